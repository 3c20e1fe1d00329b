package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
sections:
  - name: About you
    questions:
      - id: shouldBeFalseLax
        question: Is this lax?
        type: boolean
      - id: shouldBeFalseStrict
        question: Is this strict?
        type: boolean
  - name: Your company
    questions:
      - id: registeredAddress
        question: Registered address
        type: multiquestion
        fields:
          building: supplierRegisteredBuilding
          postcode: supplierRegisteredPostcode
      - id: employersInsurance
        question: Do you have employers insurance?
        type: checkboxes
        options:
          - label: Yes
            value: yes
          - label: Not applicable
`

func TestParseDeclaration_NumbersQuestionsInOrder(t *testing.T) {
	decl, err := ParseDeclaration([]byte(manifest))
	require.NoError(t, err)

	questions := decl.Questions()
	require.Len(t, questions, 4)
	for i, q := range questions {
		assert.Equal(t, i, q.Number, q.ID)
	}

	n, ok := decl.QuestionNumber("registeredAddress")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = decl.QuestionNumber("unknown")
	assert.False(t, ok)
}

func TestParseDeclaration_FieldsShareQuestionNumber(t *testing.T) {
	decl, err := ParseDeclaration([]byte(manifest))
	require.NoError(t, err)

	n, ok := decl.QuestionNumber("supplierRegisteredPostcode")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = decl.QuestionNumber("notAQuestion")
	assert.False(t, ok)
}

func TestParseDeclaration_Options(t *testing.T) {
	decl, err := ParseDeclaration([]byte(manifest))
	require.NoError(t, err)

	q := decl.Questions()[3]
	assert.Equal(t, "checkboxes", q.Type)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "Not applicable", q.Options[1].Label)
}

func TestParseDeclaration_DuplicateID(t *testing.T) {
	_, err := ParseDeclaration([]byte(`
sections:
  - name: One
    questions:
      - id: a
      - id: a
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParseDeclaration_MissingID(t *testing.T) {
	_, err := ParseDeclaration([]byte(`
sections:
  - name: One
    questions:
      - question: no id here
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestLoadDeclaration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "declaration.yml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	decl, err := LoadDeclaration(path)
	require.NoError(t, err)
	assert.Len(t, decl.Sections, 2)
}

func TestLoadDeclaration_MissingFile(t *testing.T) {
	_, err := LoadDeclaration(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}
