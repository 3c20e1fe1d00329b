package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/framework-scripts/internal/reports"
)

var successfulSuppliersCmd = &cobra.Command{
	Use:   "generate-successful-suppliers",
	Short: "List suppliers with published services and the lots they are on",
	RunE:  runSuccessfulSuppliers,
}

var (
	successfulFramework string
	successfulOutputDir string
)

func init() {
	successfulSuppliersCmd.Flags().StringVarP(&successfulFramework, "framework", "f", "", "Framework slug (required)")
	successfulSuppliersCmd.Flags().StringVarP(&successfulOutputDir, "out", "o", ".", "Output directory")

	_ = successfulSuppliersCmd.MarkFlagRequired("framework")

	rootCmd.AddCommand(successfulSuppliersCmd)
}

func runSuccessfulSuppliers(_ *cobra.Command, _ []string) error {
	client, _, err := newDataAPIClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	framework, err := client.GetFramework(ctx, successfulFramework)
	if err != nil {
		return err
	}
	services, err := client.FindServices(ctx, successfulFramework)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(successfulOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", successfulOutputDir, err)
	}
	path := filepath.Join(successfulOutputDir, reports.SuccessfulFileName(successfulFramework))
	if err := writeFile(path, func(f *os.File) error {
		return reports.WriteSuccessful(f, services, framework.LotNames())
	}); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
