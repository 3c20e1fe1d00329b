// Package schemas provides JSON Schema validation for supplier declarations.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rootField is the context gojsonschema reports for errors on the document itself.
const rootField = "(root)"

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Type    string
	Message string
	// Property is set for "required" errors and names the missing property.
	Property string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Schema is a compiled JSON Schema together with the raw document it was built from.
type Schema struct {
	path     string
	raw      map[string]any
	compiled *gojsonschema.Schema
}

// Load reads and compiles a JSON Schema file.
func Load(path string) (*Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SchemaLoadError{Path: absPath, Message: "schema file not found"}
		}
		return nil, &SchemaLoadError{Path: absPath, Message: "failed to read schema", Cause: err}
	}

	return parse(absPath, data)
}

// Parse compiles a JSON Schema from its JSON text.
func Parse(content string) (*Schema, error) {
	return parse("(string schema)", []byte(content))
}

func parse(path string, data []byte) (*Schema, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "schema is not a JSON object", Cause: err}
	}
	return compile(path, raw)
}

func compile(path string, raw map[string]any) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "invalid schema", Cause: err}
	}
	return &Schema{path: path, raw: raw, compiled: compiled}, nil
}

// Path returns the file the schema was loaded from.
func (s *Schema) Path() string {
	return s.path
}

// Definition builds a schema that validates against the named entry of the
// root "definitions" block. References inside the definition keep resolving
// against the original definitions. It returns nil, nil when the definition
// does not exist.
func (s *Schema) Definition(name string) (*Schema, error) {
	defs, _ := s.raw["definitions"].(map[string]any)
	if _, ok := defs[name]; !ok {
		return nil, nil
	}

	raw := map[string]any{
		"definitions": defs,
		"allOf": []any{
			map[string]any{"$ref": "#/definitions/" + name},
		},
	}
	if draft, ok := s.raw["$schema"]; ok {
		raw["$schema"] = draft
	}
	return compile(s.path+"#/definitions/"+name, raw)
}

// Validate checks a decoded JSON document against the schema. It returns a
// nil *ValidationError when the document is valid.
func (s *Schema) Validate(document any) (*ValidationError, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to validate document against %s: %w", s.path, err)
	}

	if result.Valid() {
		return nil, nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		fieldErr := FieldError{
			Field:   desc.Field(),
			Type:    desc.Type(),
			Message: desc.Description(),
		}
		if fieldErr.Field == "" {
			fieldErr.Field = rootField
		}
		if property, ok := desc.Details()["property"].(string); ok {
			fieldErr.Property = property
		}
		validationErr.Errors = append(validationErr.Errors, fieldErr)
	}

	return validationErr, nil
}

// FailedKeys returns the distinct top-level properties of document that fail
// validation, in the order the validator reported them. A missing required
// top-level property counts as failing. Errors about the document as a whole
// (for example an unmatched allOf) carry no property and are not reported.
func (s *Schema) FailedKeys(document any) ([]string, error) {
	validationErr, err := s.Validate(document)
	if err != nil {
		return nil, err
	}
	if validationErr == nil {
		return []string{}, nil
	}

	keys := make([]string, 0, len(validationErr.Errors))
	seen := make(map[string]bool)
	for _, fieldErr := range validationErr.Errors {
		key := topLevelKey(fieldErr)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

func topLevelKey(fieldErr FieldError) string {
	if fieldErr.Field == rootField {
		if fieldErr.Type == "required" {
			return fieldErr.Property
		}
		return ""
	}
	key, _, _ := strings.Cut(fieldErr.Field, ".")
	return key
}
