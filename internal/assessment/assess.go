// Package assessment classifies framework applications into successful, failed
// and discretionary results and builds the report rows for each.
package assessment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jonathan/framework-scripts/internal/content"
	"github.com/jonathan/framework-scripts/internal/frameworks"
	"github.com/jonathan/framework-scripts/internal/schemas"
)

// Sentinels used in place of question labels in FailedMandatory.
const (
	Incomplete  = "INCOMPLETE"
	NoPassedLot = "No passed lot"
)

const completeStatus = "complete"

// DiscretionaryItem is a question that failed the definite pass schema but not
// the baseline, together with the supplier's answer.
type DiscretionaryItem struct {
	Label  string
	Answer any
}

// MarshalJSON encodes the item as a [label, answer] pair.
func (d DiscretionaryItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]any{d.Label, d.Answer}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Record is a supplier application with its assessment result.
type Record struct {
	frameworks.SupplierWithCounts
	FailedMandatory []string
	Discretionary   []DiscretionaryItem
}

// Validator reports the top-level declaration fields failing a schema.
type Validator interface {
	FailedKeys(document any) ([]string, error)
}

// Assessor validates declarations against the definite pass schema and an
// optional baseline schema.
type Assessor struct {
	declaration  *content.Declaration
	definitePass Validator
	baseline     Validator
}

// NewAssessor creates an Assessor. baseline may be nil, in which case the
// definite pass schema is used for both checks and nothing is discretionary.
func NewAssessor(declaration *content.Declaration, definitePass, baseline *schemas.Schema) (*Assessor, error) {
	if declaration == nil {
		return nil, errors.New("declaration content is required")
	}
	if definitePass == nil {
		return nil, errors.New("definite pass schema is required")
	}
	a := &Assessor{declaration: declaration, definitePass: definitePass}
	if baseline != nil {
		a.baseline = baseline
	}
	return a, nil
}

// Assess validates one supplier's declaration and partitions the failing
// questions into mandatory failures and discretionary issues.
func (a *Assessor) Assess(s frameworks.SupplierWithCounts) (Record, error) {
	if s.Declaration.Status() != completeStatus {
		return Record{
			SupplierWithCounts: s,
			FailedMandatory:    []string{Incomplete},
			Discretionary:      []DiscretionaryItem{},
		}, nil
	}

	document := map[string]any(s.Declaration)

	allFailed, err := a.definitePass.FailedKeys(document)
	if err != nil {
		return Record{}, &ValidationRunError{SupplierID: s.SupplierID, Cause: err}
	}

	baselineFailed := allFailed
	if a.baseline != nil {
		baselineFailed, err = a.baseline.FailedKeys(document)
		if err != nil {
			return Record{}, &ValidationRunError{SupplierID: s.SupplierID, Cause: err}
		}
	}

	inBaseline := make(map[string]bool, len(baselineFailed))
	for _, key := range baselineFailed {
		inBaseline[key] = true
	}

	mandatory, err := a.numbered(s.SupplierID, baselineFailed)
	if err != nil {
		return Record{}, err
	}

	var discretionaryKeys []string
	for _, key := range allFailed {
		if !inBaseline[key] {
			discretionaryKeys = append(discretionaryKeys, key)
		}
	}
	discretionary, err := a.numbered(s.SupplierID, discretionaryKeys)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		SupplierWithCounts: s,
		FailedMandatory:    make([]string, 0, len(mandatory)),
		Discretionary:      make([]DiscretionaryItem, 0, len(discretionary)),
	}
	for _, q := range mandatory {
		rec.FailedMandatory = append(rec.FailedMandatory, q.label())
	}
	for _, q := range discretionary {
		rec.Discretionary = append(rec.Discretionary, DiscretionaryItem{
			Label:  q.label(),
			Answer: s.Declaration[q.id],
		})
	}
	return rec, nil
}

type numberedQuestion struct {
	id     string
	number int
}

func (q numberedQuestion) label() string {
	return fmt.Sprintf("Q%d - %s", q.number, q.id)
}

// numbered maps failing keys to question numbers, ordered by number.
func (a *Assessor) numbered(supplierID int, keys []string) ([]numberedQuestion, error) {
	questions := make([]numberedQuestion, 0, len(keys))
	for _, key := range keys {
		n, ok := a.declaration.QuestionNumber(key)
		if !ok {
			return nil, &UnexpectedFieldError{SupplierID: supplierID, Field: key}
		}
		questions = append(questions, numberedQuestion{id: key, number: n})
	}
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].number != questions[j].number {
			return questions[i].number < questions[j].number
		}
		return questions[i].id < questions[j].id
	})
	return questions, nil
}
