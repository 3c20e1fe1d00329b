package pdfscan

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object identifies one stored document.
type Object struct {
	Bucket string `json:"bucket_name"`
	Key    string `json:"key"`
}

// ObjectStore lists and downloads documents.
type ObjectStore interface {
	ListPDFs(ctx context.Context, bucket, prefix string) ([]Object, error)
	Fetch(ctx context.Context, obj Object) ([]byte, error)
}

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads documents from S3.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// ListPDFs returns every object under prefix whose key ends in ".pdf".
func (s *S3Store) ListPDFs(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".pdf") {
				objects = append(objects, Object{Bucket: bucket, Key: key})
			}
		}
	}
	return objects, nil
}

// Fetch downloads an object into memory.
func (s *S3Store) Fetch(ctx context.Context, obj Object) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return data, nil
}
