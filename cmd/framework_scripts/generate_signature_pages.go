package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/agreements"
	"github.com/jonathan/framework-scripts/internal/frameworks"
)

var signaturePagesCmd = &cobra.Command{
	Use:   "generate-signature-pages",
	Short: "Generate framework agreement signature pages for successful suppliers",
	Long: `Render an HTML signature page for every supplier that was successful on the
framework, using the page template in --template-dir, then print each page to PDF
with headless Chrome.`,
	RunE: runSignaturePages,
}

var (
	sigFramework      string
	sigTemplateDir    string
	sigOutputDir      string
	sigHTMLDir        string
	sigSupplierIDs    string
	sigSupplierIDFile string
	sigTimeout        time.Duration
)

func init() {
	signaturePagesCmd.Flags().StringVarP(&sigFramework, "framework", "f", "", "Framework slug (required)")
	signaturePagesCmd.Flags().StringVar(&sigTemplateDir, "template-dir", "", "Folder with the page template and its assets (required)")
	signaturePagesCmd.Flags().StringVarP(&sigOutputDir, "out", "o", "", "Directory for the PDF pages (required)")
	signaturePagesCmd.Flags().StringVar(&sigHTMLDir, "html-dir", "", "Directory for the intermediate HTML pages (default <out>/html)")
	signaturePagesCmd.Flags().StringVar(&sigSupplierIDs, "supplier-ids", "", "Comma separated supplier ids to generate pages for")
	signaturePagesCmd.Flags().StringVar(&sigSupplierIDFile, "supplier-id-file", "", "File with one supplier id per line")
	signaturePagesCmd.Flags().DurationVar(&sigTimeout, "page-timeout", 30*time.Second, "Time allowed to print one page")

	_ = signaturePagesCmd.MarkFlagRequired("framework")
	_ = signaturePagesCmd.MarkFlagRequired("template-dir")
	_ = signaturePagesCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(signaturePagesCmd)
}

func runSignaturePages(_ *cobra.Command, _ []string) error {
	ids, err := supplierIDs(sigSupplierIDs, sigSupplierIDFile)
	if err != nil {
		return err
	}
	client, _, err := newDataAPIClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	framework, err := client.GetFramework(ctx, sigFramework)
	if err != nil {
		return err
	}
	details, err := agreements.DetailsFromFramework(framework)
	if err != nil {
		return err
	}

	records, err := frameworks.FindSuppliersWithDraftCounts(ctx, client, sigFramework, frameworks.CountOptions{SupplierIDs: ids})
	if err != nil {
		return err
	}
	pages := agreements.BuildPages(records, details)
	logger.Info("Generating signature pages", zap.String("framework", sigFramework), zap.Int("count", len(pages)))

	htmlDir := sigHTMLDir
	if htmlDir == "" {
		htmlDir = filepath.Join(sigOutputDir, "html")
	}
	htmlPaths, err := agreements.RenderHTML(pages, details, sigTemplateDir, htmlDir)
	if err != nil {
		return err
	}

	failed, err := agreements.RenderPDFs(ctx, agreements.ChromePDF{Timeout: sigTimeout}, htmlPaths, sigOutputDir, logger)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		for _, f := range failed {
			fmt.Fprintln(os.Stderr, f)
		}
		return fmt.Errorf("%d of %d signature pages failed to render", len(failed), len(htmlPaths))
	}
	fmt.Printf("Wrote %d signature pages to %s\n", len(htmlPaths), sigOutputDir)
	return nil
}
