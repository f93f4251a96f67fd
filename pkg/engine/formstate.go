package engine

import "github.com/goliatone/go-formrules/pkg/schema"

// FormState summarises a session for submit buttons and progress chrome.
type FormState string

const (
	// StateValid means every currently required field is set, validated,
	// and error-free.
	StateValid FormState = "valid"
	// StateNeedsInput means at least one required field is still empty.
	StateNeedsInput FormState = "needs-input"
	// StateHasError means at least one required field holds an error.
	StateHasError FormState = "has-error"
	// StateUnknown means every required field is set but some have never
	// been validated, so their validity is not yet known.
	StateUnknown FormState = "incomplete-unknown"
)

// FormState classifies the session from its required visible flat fields:
// errors beat emptiness, emptiness beats untouched, untouched beats valid.
func (s *Session) FormState() FormState {
	states := s.FieldStates()

	var required []*schema.Field
	s.engine.form.FlatFields(func(_ int, field *schema.Field) bool {
		if state, tracked := states[field.Name]; tracked && !state.IsVisible {
			return true
		}
		if s.engine.validator.IsRequired(field, s.values) {
			required = append(required, field)
		}
		return true
	})

	for _, field := range required {
		if s.errors.FieldHasMessages(field.Name) {
			return StateHasError
		}
	}
	for _, field := range required {
		if s.isFalsy(s.values[field.Name]) {
			return StateNeedsInput
		}
	}
	for _, field := range required {
		if !s.touched[field.Name] {
			return StateUnknown
		}
	}
	return StateValid
}
