package specification

import (
	"fmt"

	"github.com/agentx-labs/stencil/internal/template"
	"go.yaml.in/yaml/v3"
)

// document mirrors the on-disk specification layout.
type document struct {
	Requires     string            `yaml:"requires"`
	Placeholders []placeholderSpec `yaml:"placeholders"`
}

type placeholderSpec struct {
	Key     string   `yaml:"key"`
	Message string   `yaml:"message"`
	Type    string   `yaml:"type"`
	Default string   `yaml:"default"`
	Options []string `yaml:"options"`
}

// Parse decodes a specification document. path is used in error messages
// only. An empty document yields an empty specification.
func Parse(data []byte, path string) (*template.Specification, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if raw == nil {
		return &template.Specification{}, nil
	}

	issues, err := validateDocument(normalizeYAML(raw))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if len(issues) > 0 {
		return nil, &ParseError{Path: path, Issues: issues}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	spec, issues := doc.toSpecification()
	if len(issues) > 0 {
		return nil, &ParseError{Path: path, Issues: issues}
	}

	if err := CheckUniqueKeys(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// toSpecification converts the decoded document, reporting rules the schema
// cannot express.
func (d document) toSpecification() (*template.Specification, []Issue) {
	spec := &template.Specification{Requires: d.Requires}
	var issues []Issue

	for i, p := range d.Placeholders {
		item := &template.PlaceholderItem{
			Key:     p.Key,
			Message: p.Message,
		}
		switch p.Type {
		case "multiple":
			item.Kind = template.MultipleChoice
			item.Options = p.Options
		default:
			item.Kind = template.SingleChoice
			item.Default = p.Default
			if len(p.Options) > 0 {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("/placeholders/%d/options", i),
					Message: "options require type multiple",
				})
			}
		}
		spec.Placeholders = append(spec.Placeholders, item)
	}
	return spec, issues
}

// CheckUniqueKeys fails with a DuplicateKeyError naming the first key that
// appears twice.
func CheckUniqueKeys(spec *template.Specification) error {
	seen := make(map[string]bool, len(spec.Placeholders))
	for _, p := range spec.Placeholders {
		if seen[p.Key] {
			return &DuplicateKeyError{Key: p.Key}
		}
		seen[p.Key] = true
	}
	return nil
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types.
// yaml.v3 produces map[interface{}]interface{} for non-string keys, which
// encoding/json rejects.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}
