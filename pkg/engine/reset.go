package engine

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formrules/pkg/schema"
)

// ResolveResetTargets expands a symbolic target into concrete field names.
// The ALL sentinel covers every key of the value snapshot; the SECTION
// sentinel covers the fields of the section at sectionIndex; an explicit
// token list resolves "#id" to a section's fields, "$tag" to the fields
// carrying that category, and anything else to a field name. Names are
// deduplicated keeping first-seen order. A token that resolves to nothing is
// a StructuralError.
func (s *Session) ResolveResetTargets(target *schema.Target, sectionIndex int) ([]string, error) {
	if target == nil {
		return nil, nil
	}

	if target.All {
		names := make([]string, 0, len(s.values))
		for name := range s.values {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	if target.Section {
		if sectionIndex < 0 || sectionIndex >= len(s.engine.form.Sections) {
			return nil, structuralf("section index %d out of range for SECTION reset target", sectionIndex)
		}
		return s.engine.form.Sections[sectionIndex].FieldNames(), nil
	}

	var (
		names []string
		seen  = make(map[string]bool, len(target.Fields))
	)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, token := range target.Fields {
		switch {
		case strings.HasPrefix(token, "#"):
			section, ok := s.engine.form.SectionByID(token[1:])
			if !ok {
				return nil, structuralf("reset token %q names no section", token)
			}
			for _, name := range section.FieldNames() {
				add(name)
			}
		case strings.HasPrefix(token, "$"):
			matched := s.engine.form.CategoryFields(token[1:])
			if len(matched) == 0 {
				return nil, structuralf("reset token %q matches no category", token)
			}
			for _, name := range matched {
				add(name)
			}
		default:
			if _, ok := s.engine.form.FieldByName(token); !ok {
				return nil, structuralf("reset token %q names no field", token)
			}
			add(token)
		}
	}
	return names, nil
}
