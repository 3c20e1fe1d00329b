// Package awsauth builds AWS configurations that act through an assumed role.
package awsauth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
)

// DefaultRegion is where the marketplace infrastructure runs.
const DefaultRegion = "eu-west-1"

// SessionName returns a unique role session name with the given prefix.
func SessionName(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// AssumeRole loads the default credential chain and returns a config whose
// credentials come from assuming roleARN. Credentials are cached and
// refreshed by the SDK.
func AssumeRole(ctx context.Context, roleARN, region, sessionPrefix string) (aws.Config, error) {
	if roleARN == "" {
		return aws.Config{}, fmt.Errorf("role arn is required")
	}
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = SessionName(sessionPrefix)
	})
	cfg.Credentials = aws.NewCredentialsCache(provider)
	return cfg, nil
}
