package pdfscan

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// ReportHeader is the first row of a scan report.
var ReportHeader = []string{"scanned_at", "bucket", "framework", "key", "status_code", "message"}

// Result is the outcome of scanning one document.
type Result struct {
	ScannedAt  string
	Bucket     string
	Framework  string
	Key        string
	StatusCode int
	Message    string
}

func (r Result) values() []string {
	return []string{r.ScannedAt, r.Bucket, r.Framework, r.Key, strconv.Itoa(r.StatusCode), r.Message}
}

// ReportName returns the default report file name.
func ReportName(stage, framework string) string {
	return fmt.Sprintf("pdf_scan_results_%s-%s.csv", stage, framework)
}

// Report appends scan results to a CSV file. It is safe for concurrent use.
type Report struct {
	mu   sync.Mutex
	path string
}

// CreateReport truncates path and writes the header.
func CreateReport(path string) (*Report, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(ReportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Report{path: path}, nil
}

// OpenReport appends to an existing report from an earlier run.
func OpenReport(path string) (*Report, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	return &Report{path: path}, nil
}

// Path returns the report file.
func (r *Report) Path() string {
	return r.path
}

// Append writes one result row and flushes it to disk so an interrupted run
// keeps every finished scan.
func (r *Report) Append(res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(res.values()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report row: %w", err)
	}
	return f.Close()
}
