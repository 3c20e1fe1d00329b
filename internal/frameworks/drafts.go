// Package frameworks combines supplier framework records with their draft service counts.
package frameworks

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/framework-scripts/internal/dataapi"
)

// DefaultConcurrency is the number of draft-service lookups in flight at once.
const DefaultConcurrency = 5

// LotStatus keys a draft count by lot slug and draft status.
type LotStatus struct {
	Lot    string
	Status string
}

// SupplierWithCounts is a supplier framework record enriched with draft service counts.
type SupplierWithCounts struct {
	dataapi.SupplierFramework
	Counts map[LotStatus]int
}

// CountWithStatus sums the draft counts across every lot for the given statuses.
func (s SupplierWithCounts) CountWithStatus(statuses ...string) int {
	total := 0
	for key, n := range s.Counts {
		if slices.Contains(statuses, key.Status) {
			total += n
		}
	}
	return total
}

// LotCount returns the number of drafts on one lot with one status.
func (s SupplierWithCounts) LotCount(lot, status string) int {
	return s.Counts[LotStatus{Lot: lot, Status: status}]
}

// API is the subset of the Data API needed to build draft counts.
type API interface {
	FindFrameworkSuppliers(ctx context.Context, frameworkSlug string) ([]dataapi.SupplierFramework, error)
	FindDraftServices(ctx context.Context, supplierID int, frameworkSlug string) ([]dataapi.DraftService, error)
}

// CountOptions controls FindSuppliersWithDraftCounts.
type CountOptions struct {
	// SupplierIDs restricts the result to these suppliers when non-empty.
	SupplierIDs []int
	// Concurrency bounds concurrent draft-service lookups. Zero means DefaultConcurrency.
	Concurrency int
}

// FindSuppliersWithDraftCounts returns the framework's suppliers, in API order,
// each annotated with its draft service counts per lot and status.
func FindSuppliersWithDraftCounts(ctx context.Context, api API, frameworkSlug string, opts CountOptions) ([]SupplierWithCounts, error) {
	suppliers, err := api.FindFrameworkSuppliers(ctx, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to find suppliers for %s: %w", frameworkSlug, err)
	}

	if len(opts.SupplierIDs) > 0 {
		suppliers = slices.DeleteFunc(suppliers, func(sf dataapi.SupplierFramework) bool {
			return !slices.Contains(opts.SupplierIDs, sf.SupplierID)
		})
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	records := make([]SupplierWithCounts, len(suppliers))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, sf := range suppliers {
		i, sf := i, sf // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			drafts, err := api.FindDraftServices(gCtx, sf.SupplierID, frameworkSlug)
			if err != nil {
				return fmt.Errorf("failed to find draft services for supplier %d: %w", sf.SupplierID, err)
			}
			records[i] = SupplierWithCounts{
				SupplierFramework: sf,
				Counts:            CountDrafts(drafts),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// CountDrafts tallies draft services by lot and status.
func CountDrafts(drafts []dataapi.DraftService) map[LotStatus]int {
	counts := make(map[LotStatus]int)
	for _, d := range drafts {
		counts[LotStatus{Lot: d.LotKey(), Status: d.Status}]++
	}
	return counts
}
