// Package export runs the results-and-reasons export: fetch every supplier on
// a framework, assess their declarations and write the per-category reports.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/assessment"
	"github.com/jonathan/framework-scripts/internal/content"
	"github.com/jonathan/framework-scripts/internal/csvout"
	"github.com/jonathan/framework-scripts/internal/frameworks"
	"github.com/jonathan/framework-scripts/internal/schemas"
)

// DefaultProgressEvery is how many records are written between progress lines.
const DefaultProgressEvery = 100

// Options holds configuration for ExportSuppliers
type Options struct {
	FrameworkSlug string
	OutputDir     string
	AdminURL      string

	Declaration  *content.Declaration
	DefinitePass *schemas.Schema
	Baseline     *schemas.Schema // Optional

	// SupplierIDs restricts the export when non-empty.
	SupplierIDs []int
	Concurrency int

	// CompletedStatuses overrides assessment.DefaultCompletedStatuses.
	CompletedStatuses []string

	Now           time.Time
	ProgressEvery int
	Progress      io.Writer
	Logger        *zap.Logger
}

// Result summarises a finished export.
type Result struct {
	Assessed int
	Counts   map[assessment.Category]int
	Paths    map[assessment.Category]string
}

// ExportSuppliers assesses every supplier before writing anything, so a
// validation failure aborts the run without leaving partial reports behind.
func ExportSuppliers(ctx context.Context, api frameworks.API, opts Options) (res *Result, err error) {
	if opts.FrameworkSlug == "" {
		return nil, errors.New("framework slug is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	assessor, err := assessment.NewAssessor(opts.Declaration, opts.DefinitePass, opts.Baseline)
	if err != nil {
		return nil, err
	}

	logger.Info("Fetching suppliers", zap.String("framework", opts.FrameworkSlug))
	suppliers, err := frameworks.FindSuppliersWithDraftCounts(ctx, api, opts.FrameworkSlug, frameworks.CountOptions{
		SupplierIDs: opts.SupplierIDs,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched suppliers", zap.Int("count", len(suppliers)))

	records := make([]assessment.Record, 0, len(suppliers))
	for _, s := range suppliers {
		rec, err := assessor.Assess(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	writer, err := csvout.New(opts.OutputDir, assessment.RowBuilder{
		FrameworkSlug:     opts.FrameworkSlug,
		AdminURL:          opts.AdminURL,
		CompletedStatuses: opts.CompletedStatuses,
	}, now, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close reports: %w", closeErr)
			res = nil
		}
	}()

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := writer.WriteRow(rec); err != nil {
			return nil, err
		}
		if opts.Progress != nil && (i+1)%every == 0 {
			writer.PrintCounts(opts.Progress)
		}
	}
	if opts.Progress != nil {
		writer.PrintCounts(opts.Progress)
	}

	counts := writer.Counts()
	logger.Info("Export complete",
		zap.Int("assessed", len(records)),
		zap.Int("successful", counts[assessment.Successful]),
		zap.Int("failed", counts[assessment.Failed]),
		zap.Int("discretionary", counts[assessment.Discretionary]))

	return &Result{Assessed: len(records), Counts: counts, Paths: writer.Paths()}, nil
}
