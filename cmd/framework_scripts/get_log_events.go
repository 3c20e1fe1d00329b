package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/spf13/cobra"

	"github.com/jonathan/framework-scripts/internal/awsauth"
	"github.com/jonathan/framework-scripts/internal/logevents"
)

var logEventsCmd = &cobra.Command{
	Use:   "get-log-events",
	Short: "Download CloudWatch log events for a time range",
	Long: `Dump every page of events from the log group's streams that were active between
--earliest and --latest into <out>/<group>/<stream>/<n>.json.`,
	RunE: runLogEvents,
}

var (
	logGroup     string
	logOutputDir string
	logEarliest  string
	logLatest    string
	logRoleARN   string
)

func init() {
	logEventsCmd.Flags().StringVarP(&logGroup, "group", "g", "", "Log group name (required)")
	logEventsCmd.Flags().StringVarP(&logOutputDir, "out", "o", ".", "Output directory")
	logEventsCmd.Flags().StringVar(&logEarliest, "earliest", "", "Start of the range, RFC 3339 (required)")
	logEventsCmd.Flags().StringVar(&logLatest, "latest", "", "End of the range, RFC 3339 (required)")
	logEventsCmd.Flags().StringVar(&logRoleARN, "role-arn", "", "Role to assume (default the stage's infrastructure role)")

	_ = logEventsCmd.MarkFlagRequired("group")
	_ = logEventsCmd.MarkFlagRequired("earliest")
	_ = logEventsCmd.MarkFlagRequired("latest")

	rootCmd.AddCommand(logEventsCmd)
}

// parseMillis converts an RFC 3339 timestamp to milliseconds since the epoch.
func parseMillis(name, value string) (int64, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t.UnixMilli(), nil
}

func runLogEvents(_ *cobra.Command, _ []string) error {
	earliest, err := parseMillis("earliest", logEarliest)
	if err != nil {
		return err
	}
	latest, err := parseMillis("latest", logLatest)
	if err != nil {
		return err
	}
	if latest <= earliest {
		return fmt.Errorf("--latest must be after --earliest")
	}

	roleARN := logRoleARN
	if roleARN == "" {
		ep, err := cfg.Endpoints()
		if err != nil {
			return err
		}
		roleARN = ep.AWSRoleARN
	}

	ctx := context.Background()

	awsCfg, err := awsauth.AssumeRole(ctx, roleARN, cfg.AWSRegion, "GetLogEvents")
	if err != nil {
		return err
	}

	r := logevents.NewRetriever(cloudwatchlogs.NewFromConfig(awsCfg), logGroup, logger)
	pages, err := r.DumpRange(ctx, logOutputDir, earliest, latest)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d pages of events to %s\n", pages, logOutputDir)
	return nil
}
