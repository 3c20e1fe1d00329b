// Package reports builds the framework CSV reports used after applications close.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/jonathan/framework-scripts/internal/frameworks"
)

// Application statuses in the master CSV.
const (
	StatusApplication   = "application"
	StatusNoApplication = "no_application"
)

// MasterFileName names the master CSV for a framework export.
func MasterFileName(frameworkSlug, stage string, at time.Time) string {
	return fmt.Sprintf("%s-application-export-%s-%s.csv", frameworkSlug, stage, at.UTC().Format("2006-01-02_15.04-"))
}

// MasterColumns returns the master CSV header for the given lots.
func MasterColumns(lotSlugs []string) []string {
	cols := []string{"supplier_id", "supplier_dm_name", "application_status", "declaration_status"}
	for _, lot := range lotSlugs {
		cols = append(cols, "completed_"+lot, "draft_"+lot)
	}
	return cols
}

// ApplicationStatus is "application" for a supplier with a complete
// declaration and at least one submitted service.
func ApplicationStatus(s frameworks.SupplierWithCounts) string {
	if s.Declaration.Status() == "complete" && s.CountWithStatus("submitted") > 0 {
		return StatusApplication
	}
	return StatusNoApplication
}

// MasterRows builds one row per supplier that registered interest, skipping
// excluded ids. Suppliers keep their input order.
func MasterRows(records []frameworks.SupplierWithCounts, lotSlugs []string, excluded []int) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if slices.Contains(excluded, r.SupplierID) {
			continue
		}
		row := []string{
			strconv.Itoa(r.SupplierID),
			r.SupplierName,
			ApplicationStatus(r),
			r.Declaration.Status(),
		}
		for _, lot := range lotSlugs {
			row = append(row,
				strconv.Itoa(r.LotCount(lot, "submitted")),
				strconv.Itoa(r.LotCount(lot, "not-submitted")),
			)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteMaster writes the master CSV.
func WriteMaster(w io.Writer, records []frameworks.SupplierWithCounts, lotSlugs []string, excluded []int) error {
	return writeAll(w, MasterColumns(lotSlugs), MasterRows(records, lotSlugs, excluded))
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
