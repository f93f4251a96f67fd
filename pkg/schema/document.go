package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDocument parses a form schema from JSON or YAML. Operator-supplied
// display strings (titles, labels, placeholders, messages) are sanitised so
// documents sourced from untrusted authors cannot smuggle markup to the
// rendering layer. The parsed form is structurally validated before it is
// returned.
func ParseDocument(data []byte) (*Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document is empty")
	}

	var form Form
	if err := json.Unmarshal(data, &form); err != nil {
		form = Form{}
		if yamlErr := yaml.Unmarshal(data, &form); yamlErr != nil {
			return nil, fmt.Errorf("schema: parse document: invalid JSON or YAML")
		}
	}

	sanitizeForm(&form)
	if err := Validate(&form); err != nil {
		return nil, err
	}
	return &form, nil
}

// LoadFS reads and parses a schema document from the provided filesystem.
func LoadFS(fsys fs.FS, path string) (*Form, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	form, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("schema: file %s: %w", path, err)
	}
	return form, nil
}

// Validate checks the structural invariants the engine relies on: array
// sections name their array, field names are present and unique across flat
// sections and within each repeatable section.
func Validate(form *Form) error {
	if form == nil {
		return fmt.Errorf("schema: form is nil")
	}
	if len(form.Sections) == 0 {
		return fmt.Errorf("schema: form has no sections")
	}

	seen := make(map[string]string, 16)
	for i := range form.Sections {
		section := &form.Sections[i]
		if section.IsArray && strings.TrimSpace(section.ArrayName) == "" {
			return fmt.Errorf("schema: section %d is repeatable but has no arrayName", i)
		}
		if len(section.Fields) == 0 {
			return fmt.Errorf("schema: section %d declares no fields", i)
		}

		rowSeen := make(map[string]struct{}, len(section.Fields))
		for j := range section.Fields {
			field := &section.Fields[j]
			name := strings.TrimSpace(field.Name)
			if name == "" {
				return fmt.Errorf("schema: section %d field %d has no name", i, j)
			}

			if section.IsArray {
				if _, dup := rowSeen[name]; dup {
					return fmt.Errorf("schema: duplicate field %q in repeatable section %q", name, section.ArrayName)
				}
				rowSeen[name] = struct{}{}
				continue
			}

			if where, dup := seen[name]; dup {
				return fmt.Errorf("schema: duplicate field %q (already declared in %s)", name, where)
			}
			seen[name] = fmt.Sprintf("section %d", i)
		}
	}
	return nil
}
