package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Category is the outcome bucket a supplier application is reported in.
type Category int

const (
	Successful Category = iota
	Failed
	Discretionary
)

// Categories lists every category in reporting order.
var Categories = []Category{Successful, Failed, Discretionary}

func (c Category) String() string {
	switch c {
	case Successful:
		return "successful"
	case Failed:
		return "failed"
	case Discretionary:
		return "discretionary"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Classify routes a record by its onFramework flag: true is successful,
// false is failed and unset is discretionary.
func Classify(r Record) Category {
	switch {
	case r.OnFramework == nil:
		return Discretionary
	case *r.OnFramework:
		return Successful
	default:
		return Failed
	}
}

// Column is a single named cell of a report row.
type Column struct {
	Name  string
	Value string
}

// Row is an ordered list of report cells.
type Row []Column

// Values returns the row's cell values in order.
func (r Row) Values() []string {
	values := make([]string, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// Names returns the row's column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// DefaultCompletedStatuses are the draft statuses that count as a submitted
// application. Failed services were submitted too.
var DefaultCompletedStatuses = []string{"submitted", "failed"}

// MitigatingFactorKeys are the declaration answers reported as free-text
// mitigating factors for discretionary results.
var MitigatingFactorKeys = []string{"mitigatingFactors", "mitigatingFactors2", "mitigatingFactors3"}

// RowBuilder holds the per-run values row construction depends on.
type RowBuilder struct {
	FrameworkSlug     string
	AdminURL          string
	CompletedStatuses []string
}

func (b RowBuilder) completedStatuses() []string {
	if len(b.CompletedStatuses) == 0 {
		return DefaultCompletedStatuses
	}
	return b.CompletedStatuses
}

// strategy is the fixed per-category behaviour of the report.
type strategy struct {
	shouldWrite func(b RowBuilder, r Record) (Record, bool)
	row         func(b RowBuilder, r Record) Row
}

var strategies = map[Category]strategy{
	Successful: {
		shouldWrite: func(_ RowBuilder, r Record) (Record, bool) {
			return r, true
		},
		row: func(_ RowBuilder, r Record) Row {
			return concat(supplierInfo(r), contactDetails(r))
		},
	},
	Failed: {
		shouldWrite: func(b RowBuilder, r Record) (Record, bool) {
			// Only complete applications are reported, not suppliers who never applied.
			if slices.Contains(r.FailedMandatory, Incomplete) {
				return r, false
			}
			if r.CountWithStatus(b.completedStatuses()...) == 0 {
				return r, false
			}
			if len(r.FailedMandatory) == 0 {
				r.FailedMandatory = []string{NoPassedLot}
			}
			return r, true
		},
		row: func(b RowBuilder, r Record) Row {
			return concat(
				supplierInfo(r),
				Row{{Name: "failed_mandatory", Value: strings.Join(r.FailedMandatory, ",")}},
				contactDetails(r),
				Row{{Name: "admin_link", Value: b.adminLink(r)}},
			)
		},
	},
	Discretionary: {
		shouldWrite: func(_ RowBuilder, r Record) (Record, bool) {
			return r, true
		},
		row: func(b RowBuilder, r Record) Row {
			return concat(
				supplierInfo(r),
				discretionaryQuestions(r),
				contactDetails(r),
				Row{{Name: "admin_link", Value: b.adminLink(r)}},
			)
		},
	},
}

// Columns returns the fixed header of a category's report, taken from the
// column names of an empty row so header and rows cannot disagree.
func Columns(c Category) []string {
	return strategies[c].row(RowBuilder{}, Record{}).Names()
}

// ShouldWrite reports whether the record belongs in its category's report.
// The returned record may carry a backfilled FailedMandatory reason.
func (b RowBuilder) ShouldWrite(c Category, r Record) (Record, bool) {
	return strategies[c].shouldWrite(b, r)
}

// Row builds the report row for a record.
func (b RowBuilder) Row(c Category, r Record) Row {
	return strategies[c].row(b, r)
}

func (b RowBuilder) adminLink(r Record) string {
	return fmt.Sprintf("%s/suppliers/%d/edit/declarations/%s", strings.TrimRight(b.AdminURL, "/"), r.SupplierID, b.FrameworkSlug)
}

func supplierInfo(r Record) Row {
	return Row{
		{Name: "supplier_name", Value: r.SupplierName},
		{Name: "supplier_id", Value: strconv.Itoa(r.SupplierID)},
	}
}

func contactDetails(r Record) Row {
	return Row{
		{Name: "contact_name", Value: r.Declaration.String("primaryContact")},
		{Name: "contact_email", Value: r.Declaration.String("primaryContactEmail")},
	}
}

func discretionaryQuestions(r Record) Row {
	row := Row{{Name: "failed_discretionary", Value: formatDiscretionary(r.Discretionary)}}
	for i, key := range MitigatingFactorKeys {
		row = append(row, Column{
			Name:  fmt.Sprintf("mitigating factors %d", i+1),
			Value: r.Declaration.String(key),
		})
	}
	return row
}

// formatDiscretionary renders the items as a JSON array of [label, answer]
// pairs. HTML characters are left unescaped so the cell reads naturally.
func formatDiscretionary(items []DiscretionaryItem) string {
	if items == nil {
		items = []DiscretionaryItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Sprint(items)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func concat(rows ...Row) Row {
	var out Row
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
