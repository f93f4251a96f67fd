package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips all markup from an operator-supplied display string.
// Message text is carried verbatim otherwise, including non-Latin scripts.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(trimmed))
}

func sanitizeForm(form *Form) {
	if form == nil {
		return
	}
	form.Title = sanitizeText(form.Title)
	form.Subtitle = sanitizeText(form.Subtitle)
	sanitizeEntries(form.GlobalValidations)

	for i := range form.Sections {
		section := &form.Sections[i]
		section.Title = sanitizeText(section.Title)
		section.Subtitle = sanitizeText(section.Subtitle)
		sanitizeEntries(section.GlobalValidations)
		for j := range section.ActionButtons {
			section.ActionButtons[j].Label = sanitizeText(section.ActionButtons[j].Label)
		}

		for j := range section.Fields {
			field := &section.Fields[j]
			field.Label = sanitizeText(field.Label)
			field.Placeholder = sanitizeText(field.Placeholder)
			sanitizeEntries(field.Validations)
			for k := range field.Options {
				for l := range field.Options[k].Options {
					field.Options[k].Options[l].Label = sanitizeText(field.Options[k].Options[l].Label)
				}
			}
		}
	}

	for i := range form.ActionButtons {
		form.ActionButtons[i].Label = sanitizeText(form.ActionButtons[i].Label)
	}
}

func sanitizeEntries(entries []ValidationEntry) {
	for i := range entries {
		entries[i].Message = sanitizeText(entries[i].Message)
		for j := range entries[i].Rules {
			entries[i].Rules[j].Message = sanitizeText(entries[i].Rules[j].Message)
		}
		for j := range entries[i].Custom {
			entries[i].Custom[j].Message = sanitizeText(entries[i].Custom[j].Message)
		}
		for j := range entries[i].Dependencies {
			for k := range entries[i].Dependencies[j].Rules {
				entries[i].Dependencies[j].Rules[k].Message = sanitizeText(entries[i].Dependencies[j].Rules[k].Message)
			}
		}
	}
}
