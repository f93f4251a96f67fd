package engine

import (
	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

// FieldStates derives the visibility and enablement of every flat field from
// the current snapshot. A field is invisible while any entry with Hide set
// has its guard holding; it is disabled by its Disable block, or while a
// guarded entry holding an isEmpty rule applies.
func (s *Session) FieldStates() map[string]schema.FieldState {
	states := make(map[string]schema.FieldState)
	s.engine.form.FlatFields(func(_ int, field *schema.Field) bool {
		states[field.Name] = s.fieldState(field)
		return true
	})
	return states
}

func (s *Session) fieldState(field *schema.Field) schema.FieldState {
	state := schema.FieldState{IsVisible: true, IsEnable: true}

	if field.Disable != nil && s.disabledBy(field.Disable) {
		state.IsEnable = false
	}

	for i := range field.Validations {
		entry := &field.Validations[i]
		if entry.When == nil {
			continue
		}
		if !s.engine.eval.Evaluate(entry.When, s.values) {
			continue
		}
		if entry.Hide {
			state.IsVisible = false
		}
		for j := range entry.Rules {
			if entry.Rules[j].Operator == condition.OpIsEmpty {
				state.IsEnable = false
				break
			}
		}
	}
	return state
}

func (s *Session) disabledBy(disable *schema.Disable) bool {
	if disable.Always {
		return true
	}
	if disable.When != nil && s.engine.eval.Evaluate(disable.When, s.values) {
		return true
	}
	if len(disable.Conditions) == 0 {
		return false
	}

	if disable.Logic == condition.LogicAnd {
		for i := range disable.Conditions {
			if !s.engine.eval.Evaluate(&disable.Conditions[i], s.values) {
				return false
			}
		}
		return true
	}
	for i := range disable.Conditions {
		if s.engine.eval.Evaluate(&disable.Conditions[i], s.values) {
			return true
		}
	}
	return false
}

// applyDisableClears blanks the stored value of every field that just became
// disabled, unless the field opts out with resetValueWhenDisable=false.
func (s *Session) applyDisableClears() {
	s.engine.form.FlatFields(func(_ int, field *schema.Field) bool {
		if !field.ClearOnDisable() {
			return true
		}
		if s.fieldState(field).IsEnable {
			return true
		}
		if s.isFalsy(s.values[field.Name]) {
			return true
		}
		s.values[field.Name] = ""
		s.errors.SetFlat(field.Name, []string{})
		return true
	})
}

// VisibleOptions filters a field's option groups down to those whose guard
// holds for the current snapshot, flattened in declaration order.
func (s *Session) VisibleOptions(field *schema.Field) []schema.Option {
	if field == nil {
		return nil
	}
	var options []schema.Option
	for i := range field.Options {
		group := &field.Options[i]
		if group.When != nil && !s.engine.eval.Evaluate(group.When, s.values) {
			continue
		}
		options = append(options, group.Options...)
	}
	return options
}
