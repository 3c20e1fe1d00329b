package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/assessment"
	"github.com/jonathan/framework-scripts/internal/content"
	"github.com/jonathan/framework-scripts/internal/export"
	"github.com/jonathan/framework-scripts/internal/schemas"
)

var exportResultsCmd = &cobra.Command{
	Use:   "export-results-reasons",
	Short: "Export framework application results with pass and fail reasons",
	Long: `Validate every supplier's declaration for a framework against the definite pass
schema and its baseline, and write three CSVs: automatically successful suppliers,
suppliers who failed, and suppliers who declared discretionary data.`,
	RunE: runExportResults,
}

var (
	exportFramework       string
	exportDeclarationPath string
	exportSchemaPath      string
	exportBaseline        string
	exportOutputDir       string
	exportSupplierIDs     string
	exportSupplierIDFile  string
	exportConcurrency     int
)

func init() {
	exportResultsCmd.Flags().StringVarP(&exportFramework, "framework", "f", "", "Framework slug (required)")
	exportResultsCmd.Flags().StringVar(&exportDeclarationPath, "declaration", "", "Path to the declaration content manifest (required)")
	exportResultsCmd.Flags().StringVar(&exportSchemaPath, "schema", "", "Path to the definite pass declaration schema (required)")
	exportResultsCmd.Flags().StringVar(&exportBaseline, "baseline-definition", "baseline", "Schema definition used as the baseline; empty disables discretionary results")
	exportResultsCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "", "Output directory (required)")
	exportResultsCmd.Flags().StringVar(&exportSupplierIDs, "supplier-ids", "", "Comma separated supplier ids to restrict the export to")
	exportResultsCmd.Flags().StringVar(&exportSupplierIDFile, "supplier-id-file", "", "File with one supplier id per line to restrict the export to")
	exportResultsCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "Concurrent draft service lookups (default 5)")

	_ = exportResultsCmd.MarkFlagRequired("framework")
	_ = exportResultsCmd.MarkFlagRequired("declaration")
	_ = exportResultsCmd.MarkFlagRequired("schema")
	_ = exportResultsCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportResultsCmd)
}

func runExportResults(_ *cobra.Command, _ []string) error {
	ids, err := supplierIDs(exportSupplierIDs, exportSupplierIDFile)
	if err != nil {
		return err
	}

	declaration, err := content.LoadDeclaration(exportDeclarationPath)
	if err != nil {
		return err
	}
	definitePass, err := schemas.Load(exportSchemaPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded definite pass schema", zap.String("path", definitePass.Path()))

	var baseline *schemas.Schema
	if exportBaseline != "" {
		baseline, err = definitePass.Definition(exportBaseline)
		if err != nil {
			return err
		}
		if baseline == nil {
			logger.Warn("Baseline definition not found, no results will be discretionary", zap.String("definition", exportBaseline))
		} else {
			logger.Info("Loaded baseline schema", zap.String("path", baseline.Path()))
		}
	}

	client, ep, err := newDataAPIClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	result, err := export.ExportSuppliers(ctx, client, export.Options{
		FrameworkSlug: exportFramework,
		OutputDir:     exportOutputDir,
		AdminURL:      ep.AdminURL,
		Declaration:   declaration,
		DefinitePass:  definitePass,
		Baseline:      baseline,
		SupplierIDs:   ids,
		Concurrency:   exportConcurrency,
		Progress:      os.Stdout,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, c := range assessment.Categories {
		if path, ok := result.Paths[c]; ok {
			fmt.Printf("%s: %s\n", c, path)
		}
	}
	return nil
}
