package engine

import (
	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
	"github.com/goliatone/go-formrules/pkg/validate"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithOperators injects a shared operator table so extensions registered at
// process start are visible to every condition and rule.
func WithOperators(ops *condition.Operators) Option {
	return func(e *Engine) {
		e.ops = ops
	}
}

// WithCustomValidators injects a shared custom-validator registry.
func WithCustomValidators(reg *validate.Registry) Option {
	return func(e *Engine) {
		e.customs = reg
	}
}

// WithMessages overrides the fallback validation messages.
func WithMessages(messages validate.Messages) Option {
	return func(e *Engine) {
		e.messages = &messages
	}
}

// Engine binds a form schema to the validator and registries it should run
// with. It is immutable after construction; per-session mutable state lives
// in Session.
type Engine struct {
	form      *schema.Form
	ops       *condition.Operators
	customs   *validate.Registry
	messages  *validate.Messages
	validator *validate.Validator
	eval      *condition.Evaluator
}

// New constructs an Engine for the given form, validating the schema's
// structural invariants up front. Missing dependencies are initialised with
// the built-in implementations so callers can start with a single
// constructor call.
func New(form *schema.Form, options ...Option) (*Engine, error) {
	if err := schema.Validate(form); err != nil {
		return nil, err
	}

	e := &Engine{form: form}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.ops == nil {
		e.ops = condition.NewOperators()
	}
	if e.customs == nil {
		e.customs = validate.NewRegistry()
	}

	validatorOptions := []validate.Option{
		validate.WithOperators(e.ops),
		validate.WithRegistry(e.customs),
	}
	if e.messages != nil {
		validatorOptions = append(validatorOptions, validate.WithMessages(*e.messages))
	}
	e.validator = validate.New(validatorOptions...)
	e.eval = e.validator.Evaluator()
	return e, nil
}

// Form returns the schema this engine validates against.
func (e *Engine) Form() *schema.Form { return e.form }

// Operators exposes the operator table for registration.
func (e *Engine) Operators() *condition.Operators { return e.ops }

// CustomValidators exposes the custom-validator registry for registration.
func (e *Engine) CustomValidators() *validate.Registry { return e.customs }

// Validator exposes the underlying field rule validator.
func (e *Engine) Validator() *validate.Validator { return e.validator }

// ScopeKind selects how much of the form a validation run covers.
type ScopeKind int

const (
	// ScopeAll validates every flat field and every row of every
	// repeatable section.
	ScopeAll ScopeKind = iota
	// ScopeSection validates one section: all its fields when flat, or one
	// row when the scope carries a row index into a repeatable section.
	ScopeSection
	// ScopeFields validates exactly the named flat fields.
	ScopeFields
)

// Scope describes a validation request. Row is ignored unless the section is
// repeatable; a negative Row validates every row of that section.
type Scope struct {
	Kind    ScopeKind
	Section int
	Row     int
	Fields  []string
}

// All scopes a run over the entire form.
func All() Scope { return Scope{Kind: ScopeAll, Row: -1} }

// SectionScope scopes a run over one flat section.
func SectionScope(index int) Scope {
	return Scope{Kind: ScopeSection, Section: index, Row: -1}
}

// RowScope scopes a run over a single row of a repeatable section.
func RowScope(index, row int) Scope {
	return Scope{Kind: ScopeSection, Section: index, Row: row}
}

// FieldsScope scopes a run over an explicit field list.
func FieldsScope(names ...string) Scope {
	return Scope{Kind: ScopeFields, Row: -1, Fields: names}
}
