package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/framework-scripts/internal/frameworks"
	"github.com/jonathan/framework-scripts/internal/reports"
)

var masterCSVCmd = &cobra.Command{
	Use:   "generate-master-csv",
	Short: "Export every supplier's application status and draft counts per lot",
	RunE:  runMasterCSV,
}

var (
	masterFramework string
	masterOutputDir string
	masterExclude   string
)

func init() {
	masterCSVCmd.Flags().StringVarP(&masterFramework, "framework", "f", "", "Framework slug (required)")
	masterCSVCmd.Flags().StringVarP(&masterOutputDir, "out", "o", ".", "Output directory")
	masterCSVCmd.Flags().StringVar(&masterExclude, "exclude", "", "Comma separated supplier ids to leave out, such as test accounts")

	_ = masterCSVCmd.MarkFlagRequired("framework")

	rootCmd.AddCommand(masterCSVCmd)
}

func runMasterCSV(_ *cobra.Command, _ []string) error {
	excluded, err := parseSupplierIDs(masterExclude)
	if err != nil {
		return err
	}
	client, _, err := newDataAPIClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	framework, err := client.GetFramework(ctx, masterFramework)
	if err != nil {
		return err
	}
	records, err := frameworks.FindSuppliersWithDraftCounts(ctx, client, masterFramework, frameworks.CountOptions{})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(masterOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", masterOutputDir, err)
	}
	path := filepath.Join(masterOutputDir, reports.MasterFileName(masterFramework, cfg.Stage, time.Now()))
	if err := writeFile(path, func(f *os.File) error {
		return reports.WriteMaster(f, records, framework.LotSlugs(), excluded)
	}); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// writeFile creates path and hands it to write, reporting close errors.
func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
