package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declarationSchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"allOf": [{"$ref": "#/definitions/baseline"}],
	"properties": {
		"shouldBeFalseLax": {"enum": [false]}
	},
	"required": ["shouldBeFalseLax"],
	"definitions": {
		"baseline": {
			"type": "object",
			"properties": {
				"shouldBeFalseStrict": {"enum": [false]},
				"omnipresent": {"type": "string"},
				"address": {
					"type": "object",
					"properties": {"postcode": {"type": "string"}},
					"required": ["postcode"]
				}
			},
			"required": ["shouldBeFalseStrict", "omnipresent"]
		}
	}
}`

func mustParse(t *testing.T, content string) *Schema {
	t.Helper()
	schema, err := Parse(content)
	require.NoError(t, err)
	return schema
}

func TestFailedKeys_ValidDocument(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	keys, err := schema.FailedKeys(map[string]any{
		"shouldBeFalseLax":    false,
		"shouldBeFalseStrict": false,
		"omnipresent":         "here",
	})
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NotNil(t, keys)
}

func TestFailedKeys_ReportsTopLevelProperties(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	keys, err := schema.FailedKeys(map[string]any{
		"shouldBeFalseLax":    true,
		"shouldBeFalseStrict": true,
		"omnipresent":         "here",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shouldBeFalseLax", "shouldBeFalseStrict"}, keys)
}

func TestFailedKeys_MissingRequiredProperty(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	keys, err := schema.FailedKeys(map[string]any{
		"shouldBeFalseLax":    false,
		"shouldBeFalseStrict": false,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"omnipresent"}, keys)
}

func TestFailedKeys_NestedErrorUsesFirstSegment(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	keys, err := schema.FailedKeys(map[string]any{
		"shouldBeFalseLax":    false,
		"shouldBeFalseStrict": false,
		"omnipresent":         "here",
		"address":             map[string]any{"postcode": 12},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, keys)

	keys, err = schema.FailedKeys(map[string]any{
		"shouldBeFalseLax":    false,
		"shouldBeFalseStrict": false,
		"omnipresent":         "here",
		"address":             map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, keys)
}

func TestFailedKeys_DistinctKeys(t *testing.T) {
	schema := mustParse(t, `{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 5, "pattern": "^[0-9]+$"}}
	}`)

	keys, err := schema.FailedKeys(map[string]any{"name": "ab"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, keys)
}

func TestDefinition_Baseline(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	baseline, err := schema.Definition("baseline")
	require.NoError(t, err)
	require.NotNil(t, baseline)

	// The lax property only exists in the definite pass schema.
	keys, err := baseline.FailedKeys(map[string]any{
		"shouldBeFalseLax":    true,
		"shouldBeFalseStrict": true,
		"omnipresent":         "here",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shouldBeFalseStrict"}, keys)
}

func TestDefinition_Missing(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	baseline, err := schema.Definition("nope")
	require.NoError(t, err)
	assert.Nil(t, baseline)
}

func TestBaselineFailuresAreSubsetOfDefinitePass(t *testing.T) {
	schema := mustParse(t, declarationSchema)
	baseline, err := schema.Definition("baseline")
	require.NoError(t, err)

	documents := []map[string]any{
		{},
		{"shouldBeFalseLax": true},
		{"shouldBeFalseStrict": true, "omnipresent": 4},
		{"shouldBeFalseLax": true, "shouldBeFalseStrict": true, "omnipresent": "x"},
		{"shouldBeFalseLax": false, "shouldBeFalseStrict": false, "omnipresent": "x", "address": "nowhere"},
	}

	for _, doc := range documents {
		all, err := schema.FailedKeys(doc)
		require.NoError(t, err)
		baselineOnly, err := baseline.FailedKeys(doc)
		require.NoError(t, err)
		assert.Subset(t, all, baselineOnly, "document %v", doc)
	}
}

func TestLoad_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "declaration.json")
	require.NoError(t, os.WriteFile(path, []byte(declarationSchema), 0644))

	schema, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, schema.Path())
}

func TestLoad_NonExistentSchema(t *testing.T) {
	_, err := Load("testdata/nonexistent_schema.json")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "not found")
}

func TestParse_MalformedSchema(t *testing.T) {
	_, err := Parse("{ invalid json }")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestParse_InvalidSchemaKeyword(t *testing.T) {
	_, err := Parse(`{"type": 12}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	schema := mustParse(t, declarationSchema)

	validationErr, err := schema.Validate(map[string]any{"shouldBeFalseLax": true})
	require.NoError(t, err)
	require.NotNil(t, validationErr)
	assert.Contains(t, validationErr.Error(), "validation failed")
	assert.Contains(t, validationErr.Error(), "shouldBeFalseLax")
}
