// Package main provides the entry point for the Digital Marketplace framework scripts.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/framework-scripts/internal/config"
)

var (
	configFile string
	stageFlag  string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "framework-scripts",
	Short: "Digital Marketplace framework administration scripts",
	Long: `Scripts run around a framework's application window: exporting application
results, reminding suppliers with incomplete applications, scanning uploaded
documents, generating agreement signature pages and reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if stageFlag != "" {
			cfg.Stage = stageFlag
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&stageFlag, "stage", "", "Stage to run against (overrides DM_STAGE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
