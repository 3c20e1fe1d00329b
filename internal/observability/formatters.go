// Package observability provides formatted progress and summary output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Count is a labelled tally shown in a summary.
type Count struct {
	Label string
	Value int
}

// Printer handles formatted output for progress and summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCounts writes a single progress line such as
// "successful: 10, failed: 2, discretionary: 1".
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCounts(counts []Count) {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Label, c.Value))
	}
	fmt.Fprintln(p.out, strings.Join(parts, ", "))
}

// PrintSummary writes a boxed summary of counts and, optionally, the first
// few items of a list with an overflow note.
func (p *Printer) PrintSummary(title string, counts []Count, items []string) {
	var sb strings.Builder

	width := 0
	for _, c := range counts {
		width = max(width, len(c.Label))
	}
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%-*s  %d\n", width+1, c.Label+":", c.Value))
	}

	if len(items) > 0 {
		if len(counts) > 0 {
			sb.WriteString("\n")
		}
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
