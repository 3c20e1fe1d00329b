// Package logevents dumps CloudWatch log events to local JSON files.
package logevents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"go.uber.org/zap"
)

// LogsAPI is the subset of the CloudWatch Logs client the retriever uses.
type LogsAPI interface {
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// Retriever reads the streams of one log group.
type Retriever struct {
	client LogsAPI
	group  string
	logger *zap.Logger
}

// NewRetriever creates a Retriever for group.
func NewRetriever(client LogsAPI, group string, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{client: client, group: group, logger: logger}
}

// StreamsInRange returns the names of streams with events overlapping the
// open interval (earliest, latest), in milliseconds since the epoch. Streams
// are visited most recently active first.
func (r *Retriever) StreamsInRange(ctx context.Context, earliest, latest int64) ([]string, error) {
	var streams []string
	input := &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName: aws.String(r.group),
		OrderBy:      types.OrderByLastEventTime,
		Descending:   aws.Bool(true),
	}

	for {
		out, err := r.client.DescribeLogStreams(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to describe log streams for %s: %w", r.group, err)
		}
		for _, s := range out.LogStreams {
			if earliest < aws.ToInt64(s.LastEventTimestamp) && aws.ToInt64(s.FirstEventTimestamp) < latest {
				streams = append(streams, aws.ToString(s.LogStreamName))
			}
		}
		if len(out.LogStreams) == 0 || out.NextToken == nil {
			return streams, nil
		}
		input.NextToken = out.NextToken
	}
}

// Event is one log event as written to disk.
type Event struct {
	Timestamp     int64  `json:"timestamp"`
	Message       string `json:"message"`
	IngestionTime int64  `json:"ingestionTime"`
}

// Page is one response page as written to disk.
type Page struct {
	Events            []Event `json:"events"`
	NextForwardToken  string  `json:"nextForwardToken"`
	NextBackwardToken string  `json:"nextBackwardToken"`
}

func toPage(out *cloudwatchlogs.GetLogEventsOutput) Page {
	page := Page{
		Events:            make([]Event, 0, len(out.Events)),
		NextForwardToken:  aws.ToString(out.NextForwardToken),
		NextBackwardToken: aws.ToString(out.NextBackwardToken),
	}
	for _, e := range out.Events {
		page.Events = append(page.Events, Event{
			Timestamp:     aws.ToInt64(e.Timestamp),
			Message:       aws.ToString(e.Message),
			IngestionTime: aws.ToInt64(e.IngestionTime),
		})
	}
	return page
}

// DumpStream writes every page of a stream, oldest first, to
// <dir>/<group>/<stream>/<n>.json. Paging stops at the first empty page,
// which is written too. It returns the number of pages written.
func (r *Retriever) DumpStream(ctx context.Context, dir, stream string) (int, error) {
	streamDir := filepath.Join(dir, r.group, stream)
	if err := os.MkdirAll(streamDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", streamDir, err)
	}

	input := &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(r.group),
		LogStreamName: aws.String(stream),
		StartFromHead: aws.Bool(true),
	}

	for n := 0; ; n++ {
		out, err := r.client.GetLogEvents(ctx, input)
		if err != nil {
			return n, fmt.Errorf("failed to get log events for %s/%s: %w", r.group, stream, err)
		}
		if err := writePage(filepath.Join(streamDir, strconv.Itoa(n)+".json"), toPage(out)); err != nil {
			return n, err
		}
		if len(out.Events) == 0 {
			return n + 1, nil
		}
		input.NextToken = out.NextForwardToken
	}
}

// DumpRange writes the events of every stream active in (earliest, latest).
// It returns the total number of pages written.
func (r *Retriever) DumpRange(ctx context.Context, dir string, earliest, latest int64) (int, error) {
	streams, err := r.StreamsInRange(ctx, earliest, latest)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Found log streams", zap.String("group", r.group), zap.Int("count", len(streams)))

	total := 0
	for _, stream := range streams {
		pages, err := r.DumpStream(ctx, dir, stream)
		total += pages
		if err != nil {
			return total, err
		}
		r.logger.Debug("Dumped log stream", zap.String("stream", stream), zap.Int("pages", pages))
	}
	return total, nil
}

func writePage(path string, page Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
