package assessment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssessor_RequiresInputs(t *testing.T) {
	definitePass, _ := testSchemas(t)

	_, err := NewAssessor(nil, definitePass, nil)
	assert.Error(t, err)

	_, err = NewAssessor(testDeclaration(t), nil, nil)
	assert.Error(t, err)
}

func TestAssess_IncompleteDeclarationSkipsValidation(t *testing.T) {
	definitePass, baseline := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, baseline)
	require.NoError(t, err)

	for _, status := range []string{"started", ""} {
		decl := completeDeclaration(map[string]any{"status": status, "shouldBeFalseLax": true})
		if status == "" {
			decl = completeDeclaration(map[string]any{"status": nil})
		}

		rec, err := assessor.Assess(supplier(1, boolPtr(false), decl, submittedCounts(1)))
		require.NoError(t, err)
		assert.Equal(t, []string{Incomplete}, rec.FailedMandatory)
		assert.Empty(t, rec.Discretionary)
		assert.NotNil(t, rec.Discretionary)
	}
}

func TestAssess_BaselinePartition(t *testing.T) {
	definitePass, baseline := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, baseline)
	require.NoError(t, err)

	// Baseline flags Q1, definite pass flags Q0 and Q1.
	decl := completeDeclaration(map[string]any{"shouldBeFalseLax": true, "shouldBeFalseStrict": true})
	rec, err := assessor.Assess(supplier(1, nil, decl, submittedCounts(1)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1 - shouldBeFalseStrict"}, rec.FailedMandatory)
	assert.Equal(t, []DiscretionaryItem{{Label: "Q0 - shouldBeFalseLax", Answer: true}}, rec.Discretionary)
}

func TestAssess_WithoutBaselineNothingIsDiscretionary(t *testing.T) {
	definitePass, _ := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, nil)
	require.NoError(t, err)

	decl := completeDeclaration(map[string]any{"shouldBeFalseLax": true, "shouldBeFalseStrict": true})
	rec, err := assessor.Assess(supplier(1, nil, decl, submittedCounts(1)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Q0 - shouldBeFalseLax", "Q1 - shouldBeFalseStrict"}, rec.FailedMandatory)
	assert.Empty(t, rec.Discretionary)
}

func TestAssess_PassingDeclaration(t *testing.T) {
	definitePass, baseline := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, baseline)
	require.NoError(t, err)

	rec, err := assessor.Assess(supplier(1, boolPtr(true), completeDeclaration(nil), submittedCounts(1)))
	require.NoError(t, err)
	assert.Empty(t, rec.FailedMandatory)
	assert.Empty(t, rec.Discretionary)
}

func TestAssess_LabelsOrderedByQuestionNumber(t *testing.T) {
	definitePass, _ := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, nil)
	require.NoError(t, err)

	decl := completeDeclaration(map[string]any{
		"primaryContactEmail": "not an email",
		"shouldBeFalseLax":    true,
	})
	rec, err := assessor.Assess(supplier(1, boolPtr(false), decl, submittedCounts(1)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Q0 - shouldBeFalseLax", "Q3 - primaryContactEmail"}, rec.FailedMandatory)
}

func TestAssess_UnexpectedValidationFieldIsFatal(t *testing.T) {
	definitePass, baseline := testSchemas(t)

	for name, base := range map[string]bool{"with baseline": true, "without baseline": false} {
		t.Run(name, func(t *testing.T) {
			assessor, err := NewAssessor(testDeclaration(t), definitePass, nil)
			require.NoError(t, err)
			if base {
				assessor, err = NewAssessor(testDeclaration(t), definitePass, baseline)
				require.NoError(t, err)
			}

			decl := completeDeclaration(map[string]any{"omnipresent": nil})
			_, err = assessor.Assess(supplier(1234, nil, decl, submittedCounts(1)))
			require.Error(t, err)

			var fieldErr *UnexpectedFieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "omnipresent", fieldErr.Field)
			assert.Equal(t, 1234, fieldErr.SupplierID)
			assert.Regexp(t, `Unexpected validation error.*omnipresent`, err.Error())
		})
	}
}

// An incomplete declaration is an expected state and never reaches the
// validator, while an unmapped failing field always aborts. Both paths are
// deliberate.
func TestAssess_IncompleteAndUnexpectedAreHandledDifferently(t *testing.T) {
	definitePass, baseline := testSchemas(t)
	assessor, err := NewAssessor(testDeclaration(t), definitePass, baseline)
	require.NoError(t, err)

	incomplete := completeDeclaration(map[string]any{"status": "started", "omnipresent": nil})
	rec, err := assessor.Assess(supplier(1, boolPtr(false), incomplete, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{Incomplete}, rec.FailedMandatory)

	complete := completeDeclaration(map[string]any{"omnipresent": nil})
	_, err = assessor.Assess(supplier(1, boolPtr(false), complete, nil))
	assert.Error(t, err)
}

func TestDiscretionaryItem_MarshalJSON(t *testing.T) {
	item := DiscretionaryItem{Label: "Q0 - x", Answer: "<b>&</b>"}
	b, err := item.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `["Q0 - x","<b>&</b>"]`, string(b))
}
