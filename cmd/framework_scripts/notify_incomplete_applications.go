package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/config"
	"github.com/jonathan/framework-scripts/internal/db"
	"github.com/jonathan/framework-scripts/internal/notify"
)

var notifyIncompleteCmd = &cobra.Command{
	Use:   "notify-incomplete-applications",
	Short: "Remind suppliers with incomplete applications of the deadline",
	Long: `Email suppliers on an open framework who have unconfirmed company details, an
incomplete declaration, no completed services or some incomplete services.
Each email is sent at most once; set DATABASE_URL to remember sends across runs.`,
	RunE: runNotifyIncomplete,
}

var (
	notifyFramework      string
	notifyDryRun         bool
	notifySupplierIDs    string
	notifySupplierIDFile string
	notifyTemplateID     string
)

func init() {
	notifyIncompleteCmd.Flags().StringVarP(&notifyFramework, "framework", "f", "", "Framework slug (required)")
	notifyIncompleteCmd.Flags().BoolVarP(&notifyDryRun, "dry-run", "n", false, "Log who would be emailed without sending")
	notifyIncompleteCmd.Flags().StringVar(&notifySupplierIDs, "supplier-ids", "", "Comma separated supplier ids to email, for resuming a failed run")
	notifyIncompleteCmd.Flags().StringVar(&notifySupplierIDFile, "supplier-id-file", "", "File with one supplier id per line to email")
	notifyIncompleteCmd.Flags().StringVar(&notifyTemplateID, "template-id", notify.IncompleteApplicationTemplateID, "Notify template id")

	_ = notifyIncompleteCmd.MarkFlagRequired("framework")

	rootCmd.AddCommand(notifyIncompleteCmd)
}

func runNotifyIncomplete(_ *cobra.Command, _ []string) error {
	ids, err := supplierIDs(notifySupplierIDs, notifySupplierIDFile)
	if err != nil {
		return err
	}
	if err := cfg.Require(config.NotifyAPIKeyEnv); err != nil {
		return err
	}
	client, _, err := newDataAPIClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	notifyClient, err := notify.NewClient(cfg.NotifyAPIKey)
	if err != nil {
		return err
	}

	var sentLog notify.SentLog = notify.NewMemorySentLog()
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		sentLog = database
	} else {
		logger.Warn("DATABASE_URL not set, resend protection only lasts for this run")
	}

	errorCount, err := notify.Run(ctx, client, notify.NewMailer(notifyClient, sentLog, logger), notify.RunOptions{
		FrameworkSlug: notifyFramework,
		TemplateID:    notifyTemplateID,
		DryRun:        notifyDryRun,
		SupplierIDs:   ids,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	if errorCount > 0 {
		return fmt.Errorf("%d emails failed to send", errorCount)
	}
	logger.Info("Finished notifying suppliers", zap.Bool("dry_run", notifyDryRun))
	return nil
}
