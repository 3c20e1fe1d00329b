package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/framework-scripts/internal/content"
	"github.com/jonathan/framework-scripts/internal/schemas"
)

var frameworkSlugs = []string{"g-cloud-12"}

func passingDeclaration() map[string]any {
	return map[string]any{
		"status":                            "complete",
		"conspiracyCorruptionBribery":       false,
		"fraudAndTheft":                     false,
		"terrorism":                         false,
		"organisedCrime":                    false,
		"taxEvasion":                        false,
		"environmentalSocialLabourLaw":      false,
		"bankrupt":                          false,
		"graveProfessionalMisconduct":       false,
		"primaryContact":                    "Jane Smith",
		"primaryContactEmail":               "jane@example.com",
		"supplierRegisteredName":            "Example Ltd",
		"supplierCompanyRegistrationNumber": "01234567",
		"supplierRegisteredBuilding":        "1 High Street",
		"supplierRegisteredTown":            "Bristol",
		"supplierRegisteredPostcode":        "BS1 1AA",
		"supplierRegisteredCountry":         "country:GB",
		"termsAndConditions":                true,
	}
}

func load(t *testing.T, framework string) (*content.Declaration, *schemas.Schema, *schemas.Schema) {
	t.Helper()
	decl, err := content.LoadDeclaration(filepath.Join(framework, "declaration.yml"))
	require.NoError(t, err)
	definitePass, err := schemas.Load(filepath.Join(framework, "declaration.schema.json"))
	require.NoError(t, err)
	baseline, err := definitePass.Definition("baseline")
	require.NoError(t, err)
	require.NotNil(t, baseline, "schema should define a baseline")
	return decl, definitePass, baseline
}

func TestSchemaFiles_ValidJSON(t *testing.T) {
	for _, framework := range frameworkSlugs {
		t.Run(framework, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(framework, "declaration.schema.json"))
			require.NoError(t, err)

			var v any
			assert.NoError(t, json.Unmarshal(data, &v))
		})
	}
}

// Every key a schema can fail on must be a question, or the export stops
// with an unexpected field error.
func TestSchemaKeys_AreQuestions(t *testing.T) {
	for _, framework := range frameworkSlugs {
		t.Run(framework, func(t *testing.T) {
			decl, _, _ := load(t, framework)

			data, err := os.ReadFile(filepath.Join(framework, "declaration.schema.json"))
			require.NoError(t, err)
			var raw struct {
				Properties  map[string]any `json:"properties"`
				Required    []string       `json:"required"`
				Definitions map[string]struct {
					Properties map[string]any `json:"properties"`
					Required   []string       `json:"required"`
				} `json:"definitions"`
			}
			require.NoError(t, json.Unmarshal(data, &raw))

			keys := append([]string{}, raw.Required...)
			for k := range raw.Properties {
				keys = append(keys, k)
			}
			for _, def := range raw.Definitions {
				keys = append(keys, def.Required...)
				for k := range def.Properties {
					keys = append(keys, k)
				}
			}

			for _, key := range keys {
				_, ok := decl.QuestionNumber(key)
				assert.True(t, ok, "schema key %q is not a declaration question", key)
			}
		})
	}
}

func TestDeclaration_Passes(t *testing.T) {
	for _, framework := range frameworkSlugs {
		t.Run(framework, func(t *testing.T) {
			_, definitePass, baseline := load(t, framework)

			failed, err := definitePass.FailedKeys(passingDeclaration())
			require.NoError(t, err)
			assert.Empty(t, failed)

			failed, err = baseline.FailedKeys(passingDeclaration())
			require.NoError(t, err)
			assert.Empty(t, failed)
		})
	}
}

func TestDeclaration_DiscretionaryAnswer(t *testing.T) {
	_, definitePass, baseline := load(t, "g-cloud-12")

	doc := passingDeclaration()
	doc["bankrupt"] = true

	failed, err := definitePass.FailedKeys(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"bankrupt"}, failed)

	failed, err = baseline.FailedKeys(doc)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestDeclaration_MandatoryFailure(t *testing.T) {
	_, _, baseline := load(t, "g-cloud-12")

	doc := passingDeclaration()
	doc["fraudAndTheft"] = true
	delete(doc, "termsAndConditions")

	failed, err := baseline.FailedKeys(doc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fraudAndTheft", "termsAndConditions"}, failed)
}

func TestDeclaration_AddressFieldsShareQuestionNumber(t *testing.T) {
	decl, _, _ := load(t, "g-cloud-12")

	address, ok := decl.QuestionNumber("supplierRegisteredAddress")
	require.True(t, ok)
	for _, field := range []string{"supplierRegisteredBuilding", "supplierRegisteredTown", "supplierRegisteredPostcode"} {
		n, ok := decl.QuestionNumber(field)
		assert.True(t, ok)
		assert.Equal(t, address, n, field)
	}
}
