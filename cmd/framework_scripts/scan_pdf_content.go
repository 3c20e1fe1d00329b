package main

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/awsauth"
	"github.com/jonathan/framework-scripts/internal/observability"
	"github.com/jonathan/framework-scripts/internal/pdfscan"
)

var scanPDFCmd = &cobra.Command{
	Use:   "scan-pdf-content",
	Short: "Scan a framework's uploaded PDFs for unusual content",
	Long: `List every PDF uploaded for a framework, send each to a veraPDF service and record
whether it contains actions such as JavaScript, Launch or multimedia. The list of
documents is saved to a queue file so an interrupted run can resume with --index.`,
	RunE: runScanPDF,
}

var (
	scanFramework  string
	scanVeraPDFURL string
	scanIndex      int
	scanQueueFile  string
	scanReport     string
	scanWorkers    int
)

func init() {
	scanPDFCmd.Flags().StringVarP(&scanFramework, "framework", "f", "", "Framework slug (required)")
	scanPDFCmd.Flags().StringVar(&scanVeraPDFURL, "verapdf-url", "http://localhost:8080", "Base URL of the veraPDF REST service")
	scanPDFCmd.Flags().IntVar(&scanIndex, "index", 0, "Resume a previous run from this queue position")
	scanPDFCmd.Flags().StringVar(&scanQueueFile, "queue-file", pdfscan.DefaultQueuePath, "Path of the document queue file")
	scanPDFCmd.Flags().StringVarP(&scanReport, "out", "o", "", "Report path (default pdf_scan_results_<stage>-<framework>.csv)")
	scanPDFCmd.Flags().IntVar(&scanWorkers, "workers", pdfscan.DefaultWorkers, "Documents scanned at once")

	_ = scanPDFCmd.MarkFlagRequired("framework")

	rootCmd.AddCommand(scanPDFCmd)
}

func runScanPDF(cmd *cobra.Command, _ []string) error {
	ep, err := cfg.Endpoints()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var resume *int
	if cmd.Flags().Changed("index") {
		resume = &scanIndex
	}

	reportPath := scanReport
	if reportPath == "" {
		reportPath = pdfscan.ReportName(cfg.Stage, scanFramework)
	}
	var report *pdfscan.Report
	if resume != nil {
		report, err = pdfscan.OpenReport(reportPath)
	} else {
		report, err = pdfscan.CreateReport(reportPath)
	}
	if err != nil {
		return err
	}

	awsCfg, err := awsauth.AssumeRole(ctx, ep.AWSRoleARN, cfg.AWSRegion, "PDFContentScan")
	if err != nil {
		return err
	}
	store := pdfscan.NewS3Store(s3.NewFromConfig(awsCfg))

	summary, err := pdfscan.ScanAll(ctx, store, pdfscan.NewVeraPDFClient(scanVeraPDFURL, nil), report, pdfscan.Options{
		Bucket:    ep.DocumentsBucket,
		Framework: scanFramework,
		Resume:    resume,
		QueuePath: scanQueueFile,
		Workers:   scanWorkers,
		Logger:    logger,
	})
	if errors.Is(err, pdfscan.ErrNoQueue) {
		logger.Error("No queue to resume from", zap.String("queue_file", scanQueueFile))
	}
	if err != nil {
		return err
	}

	counts := make([]observability.Count, 0, 3)
	for _, msg := range []string{pdfscan.MessageClean, pdfscan.MessageUnusual, pdfscan.MessageError} {
		counts = append(counts, observability.Count{Label: msg, Value: summary.Counts[msg]})
	}
	observability.NewPrinter(os.Stdout).PrintSummary("PDF SCAN: "+report.Path(), counts, summary.Unusual)
	return nil
}
