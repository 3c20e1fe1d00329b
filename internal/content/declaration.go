// Package content loads the framework declaration questionnaire.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Declaration is the ordered questionnaire a supplier answers when applying to a framework.
type Declaration struct {
	Sections []Section `yaml:"sections"`

	numbers map[string]int
}

// Section groups related questions.
type Section struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

// Question is a single declaration question. Number is its 0-based position
// across all sections and is assigned when the manifest is loaded.
type Question struct {
	ID       string            `yaml:"id"`
	Question string            `yaml:"question"`
	Type     string            `yaml:"type"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Options  []Option          `yaml:"options,omitempty"`
	Number   int               `yaml:"-"`
}

// Option is one choice of a radios or checkboxes question.
type Option struct {
	Label string `yaml:"label"`
	Value string `yaml:"value,omitempty"`
}

// LoadError represents a failure reading or parsing a declaration manifest.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("declaration manifest %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("declaration manifest %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// LoadDeclaration reads a YAML declaration manifest from disk.
func LoadDeclaration(path string) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read manifest", Cause: err}
	}
	decl, err := ParseDeclaration(data)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse manifest", Cause: err}
	}
	return decl, nil
}

// ParseDeclaration parses a YAML declaration manifest and numbers its questions.
func ParseDeclaration(data []byte) (*Declaration, error) {
	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, err
	}

	decl.numbers = make(map[string]int)
	number := 0
	for si := range decl.Sections {
		questions := decl.Sections[si].Questions
		for qi := range questions {
			q := &questions[qi]
			if q.ID == "" {
				return nil, fmt.Errorf("section %q question %d has no id", decl.Sections[si].Name, qi)
			}
			if _, dup := decl.numbers[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			q.Number = number
			decl.numbers[q.ID] = number
			number++
		}
	}

	// Sub-fields share the number of the question they belong to.
	for _, q := range decl.Questions() {
		for _, fieldID := range q.Fields {
			if _, exists := decl.numbers[fieldID]; !exists {
				decl.numbers[fieldID] = q.Number
			}
		}
	}

	return &decl, nil
}

// Questions returns every question in manifest order.
func (d *Declaration) Questions() []Question {
	var questions []Question
	for _, section := range d.Sections {
		questions = append(questions, section.Questions...)
	}
	return questions
}

// QuestionNumber returns the number of the question (or question sub-field) with the given id.
func (d *Declaration) QuestionNumber(id string) (int, bool) {
	n, ok := d.numbers[id]
	return n, ok
}
