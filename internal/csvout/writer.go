// Package csvout writes assessment results to one CSV report per category.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/assessment"
	"github.com/jonathan/framework-scripts/internal/observability"
)

// timestampLayout is appended to every report file name.
const timestampLayout = "2006-01-02-15-04"

var fileDescriptions = map[assessment.Category]string{
	assessment.Successful:    "automatically-successful-suppliers",
	assessment.Failed:        "suppliers-who-failed",
	assessment.Discretionary: "suppliers-who-declared-discretionary-data",
}

// FileName returns the report file name for a category.
func FileName(frameworkSlug string, c assessment.Category, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s.csv", frameworkSlug, fileDescriptions[c], at.Format(timestampLayout))
}

// WriteError represents a failure creating or writing a report file.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error for %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

type categoryFile struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// MultiWriter owns one CSV file per category. Files are created on the first
// row written to them. Close must be called to flush and release them; Paths
// and Counts stay valid afterwards.
type MultiWriter struct {
	dir           string
	frameworkSlug string
	stamp         time.Time
	rows          assessment.RowBuilder
	logger        *zap.Logger

	files  map[assessment.Category]*categoryFile
	counts map[assessment.Category]int
	closed bool
}

// New creates the output directory if needed and returns a writer for it.
func New(dir string, rows assessment.RowBuilder, stamp time.Time, logger *zap.Logger) (*MultiWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &WriteError{Path: dir, Message: "failed to create output directory", Cause: err}
	}
	return &MultiWriter{
		dir:           dir,
		frameworkSlug: rows.FrameworkSlug,
		stamp:         stamp,
		rows:          rows,
		logger:        logger,
		files:         make(map[assessment.Category]*categoryFile),
		counts:        make(map[assessment.Category]int),
	}, nil
}

// WriteRow appends the record to its category's report unless the category
// excludes it. It reports whether a row was written.
func (m *MultiWriter) WriteRow(r assessment.Record) (bool, error) {
	if m.closed {
		return false, &WriteError{Path: m.dir, Message: "writer is closed"}
	}
	category := assessment.Classify(r)

	r, ok := m.rows.ShouldWrite(category, r)
	if !ok {
		m.logger.Debug("Skipping supplier",
			zap.Int("supplier_id", r.SupplierID),
			zap.Stringer("category", category))
		return false, nil
	}

	out, err := m.file(category)
	if err != nil {
		return false, err
	}

	if err := out.csv.Write(m.rows.Row(category, r).Values()); err != nil {
		return false, &WriteError{Path: out.path, Message: "failed to write row", Cause: err}
	}
	m.counts[category]++
	return true, nil
}

func (m *MultiWriter) file(c assessment.Category) (*categoryFile, error) {
	if out, ok := m.files[c]; ok {
		return out, nil
	}

	path := filepath.Join(m.dir, FileName(m.frameworkSlug, c, m.stamp))
	f, err := os.Create(path)
	if err != nil {
		return nil, &WriteError{Path: path, Message: "failed to create report", Cause: err}
	}

	out := &categoryFile{path: path, file: f, csv: csv.NewWriter(f)}
	if err := out.csv.Write(assessment.Columns(c)); err != nil {
		_ = f.Close()
		return nil, &WriteError{Path: path, Message: "failed to write header", Cause: err}
	}

	m.files[c] = out
	m.logger.Info("Created report", zap.String("path", path), zap.Stringer("category", c))
	return out, nil
}

// Counts returns the rows written so far per category.
func (m *MultiWriter) Counts() map[assessment.Category]int {
	counts := make(map[assessment.Category]int, len(assessment.Categories))
	for _, c := range assessment.Categories {
		counts[c] = m.counts[c]
	}
	return counts
}

// Paths returns the files created so far per category.
func (m *MultiWriter) Paths() map[assessment.Category]string {
	paths := make(map[assessment.Category]string, len(m.files))
	for c, out := range m.files {
		paths[c] = out.path
	}
	return paths
}

// PrintCounts writes a progress snapshot of the per-category counts.
func (m *MultiWriter) PrintCounts(w io.Writer) {
	counts := make([]observability.Count, 0, len(assessment.Categories))
	for _, c := range assessment.Categories {
		counts = append(counts, observability.Count{Label: c.String(), Value: m.counts[c]})
	}
	observability.NewPrinter(w).PrintCounts(counts)
}

// Close flushes and closes every report file, returning all errors seen.
// Later calls do nothing.
func (m *MultiWriter) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for _, c := range assessment.Categories {
		out, ok := m.files[c]
		if !ok {
			continue
		}
		out.csv.Flush()
		if err := out.csv.Error(); err != nil {
			errs = append(errs, &WriteError{Path: out.path, Message: "failed to flush report", Cause: err})
		}
		if err := out.file.Close(); err != nil {
			errs = append(errs, &WriteError{Path: out.path, Message: "failed to close report", Cause: err})
		}
	}
	return errors.Join(errs...)
}
