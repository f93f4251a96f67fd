package validate

import (
	"fmt"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

// Messages holds the fallback texts used when a schema entry carries none.
// The %s verbs receive the operator name and the dependency field name.
type Messages struct {
	Required   string
	Rule       string
	Dependency string
}

// DefaultMessages returns the engine's stock fallback messages.
func DefaultMessages() Messages {
	return Messages{
		Required:   "this field is required",
		Rule:       "the entered value is not valid (%s)",
		Dependency: "the entered value does not match %s",
	}
}

// Option customises a Validator.
type Option func(*Validator)

// WithOperators injects a shared operator table.
func WithOperators(ops *condition.Operators) Option {
	return func(v *Validator) {
		if ops != nil {
			v.ops = ops
		}
	}
}

// WithRegistry injects a shared custom-validator registry.
func WithRegistry(reg *Registry) Option {
	return func(v *Validator) {
		if reg != nil {
			v.customs = reg
		}
	}
}

// WithMessages overrides the fallback messages.
func WithMessages(messages Messages) Option {
	return func(v *Validator) {
		v.messages = messages
	}
}

// Validator applies a field's validation entries against a snapshot. It is
// stateless and safe for concurrent use once constructed.
type Validator struct {
	ops      *condition.Operators
	customs  *Registry
	eval     *condition.Evaluator
	messages Messages
}

// New constructs a Validator, building the default operator table and custom
// registry unless options supply shared ones.
func New(options ...Option) *Validator {
	v := &Validator{messages: DefaultMessages()}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	if v.ops == nil {
		v.ops = condition.NewOperators()
	}
	if v.customs == nil {
		v.customs = NewRegistry()
	}
	v.eval = condition.NewEvaluator(v.ops)
	return v
}

// Operators exposes the operator table for registration.
func (v *Validator) Operators() *condition.Operators { return v.ops }

// Customs exposes the custom-validator registry for registration.
func (v *Validator) Customs() *Registry { return v.customs }

// Evaluator exposes the shared condition evaluator.
func (v *Validator) Evaluator() *condition.Evaluator { return v.eval }

// ValidateField walks the entries in schema order and returns every failure
// message they contribute. Within one entry: a failed guard skips the entry;
// required plus an empty value yields the required message and suppresses the
// entry's remaining checks; an empty optional value contributes nothing.
// Later entries always run regardless of earlier failures.
func (v *Validator) ValidateField(entries []schema.ValidationEntry, value any, snapshot map[string]any) []string {
	var messages []string
	for i := range entries {
		messages = append(messages, v.validateEntry(&entries[i], value, snapshot)...)
	}
	return messages
}

func (v *Validator) validateEntry(entry *schema.ValidationEntry, value any, snapshot map[string]any) []string {
	if entry.When != nil && !v.eval.Evaluate(entry.When, snapshot) {
		return nil
	}

	empty := v.ops.Apply(condition.OpIsFalsy, value, nil)
	if entry.Required && empty {
		message := entry.Message
		if message == "" {
			message = v.messages.Required
		}
		return []string{message}
	}
	if empty {
		return nil
	}

	var messages []string
	for i := range entry.Rules {
		if msg, failed := v.applyRule(&entry.Rules[i], value, entry.Rules[i].Value); failed {
			messages = append(messages, msg)
		}
	}

	for i := range entry.Custom {
		ref := &entry.Custom[i]
		fn, ok := v.customs.Lookup(ref.Validator)
		if !ok {
			continue
		}
		if result := fn(value, ref.Options, snapshot); result != "" {
			if ref.Message != "" {
				messages = append(messages, ref.Message)
			} else {
				messages = append(messages, result)
			}
		}
	}

	for i := range entry.Dependencies {
		messages = append(messages, v.applyDependency(&entry.Dependencies[i], value, snapshot)...)
	}

	return messages
}

// applyRule runs one rule against the supplied expected value, returning the
// message to record when the predicate fails. Unknown operators are skipped
// rather than failed so a misspelled rule cannot block submission.
func (v *Validator) applyRule(rule *schema.Rule, actual, expected any) (string, bool) {
	fn, ok := v.ops.Lookup(rule.Operator)
	if !ok {
		return "", false
	}

	if rule.Operator == condition.OpCompareWithOffset && rule.CompareOperator != "" {
		expected = condition.OffsetParams{
			Operator: rule.CompareOperator,
			Value:    expected,
			Offset:   rule.Offset,
		}
	}

	if fn(actual, expected) {
		return "", false
	}
	if rule.Message != "" {
		return rule.Message, true
	}
	return fmt.Sprintf(v.messages.Rule, rule.Operator), true
}

// applyDependency compares the field's value against another field's live
// value. compareWithOffset rules substitute the dependent value as the
// comparison base and shift it by the rule's offset.
func (v *Validator) applyDependency(dep *schema.DependencyRule, value any, snapshot map[string]any) []string {
	dependent := snapshot[dep.Field]

	var messages []string
	for i := range dep.Rules {
		rule := &dep.Rules[i]
		expected := dependent
		if rule.Operator == condition.OpCompareWithOffset {
			expected = condition.OffsetParams{
				Operator: rule.CompareOperator,
				Value:    dependent,
				Offset:   rule.Offset,
			}
		}

		fn, ok := v.ops.Lookup(rule.Operator)
		if !ok {
			continue
		}
		if fn(value, expected) {
			continue
		}
		if rule.Message != "" {
			messages = append(messages, rule.Message)
		} else {
			messages = append(messages, fmt.Sprintf(v.messages.Dependency, dep.Field))
		}
	}
	return messages
}

// IsRequired reports whether any of the field's entries makes it mandatory
// for the given snapshot: required set and the guard absent or holding.
func (v *Validator) IsRequired(field *schema.Field, snapshot map[string]any) bool {
	if field == nil {
		return false
	}
	for i := range field.Validations {
		entry := &field.Validations[i]
		if !entry.Required {
			continue
		}
		if entry.When == nil || v.eval.Evaluate(entry.When, snapshot) {
			return true
		}
	}
	return false
}
