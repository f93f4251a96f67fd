// Package formrules re-exports the engine's primary entry points so callers
// can drive schema-based validation from a single import.
package formrules

import (
	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/schema"
	"github.com/goliatone/go-formrules/pkg/validate"
)

// Form is the root schema for one form session.
type Form = schema.Form

// Section groups fields for display and scoped validation.
type Section = schema.Section

// Field describes one input and its validation entries.
type Field = schema.Field

// ValidationEntry is one guarded bundle of checks.
type ValidationEntry = schema.ValidationEntry

// Condition is a guard tree evaluated against the value snapshot.
type Condition = condition.Condition

// Engine binds a schema to its operator table and validator.
type Engine = engine.Engine

// Session holds one form's values, errors, and touched set.
type Session = engine.Session

// Scope describes how much of the form a validation run covers.
type Scope = engine.Scope

// StructuralError marks a schema/data mismatch; match it with errors.As.
type StructuralError = engine.StructuralError

// CustomValidator is a registered named check returning "" on success.
type CustomValidator = validate.CustomValidator

// New constructs an Engine for the given form.
func New(form *schema.Form, options ...engine.Option) (*engine.Engine, error) {
	return engine.New(form, options...)
}

// ParseDocument decodes and sanitises a JSON or YAML schema document.
func ParseDocument(data []byte) (*schema.Form, error) {
	return schema.ParseDocument(data)
}

// All scopes a validation run over the entire form.
func All() engine.Scope { return engine.All() }

// SectionScope scopes a run over one section.
func SectionScope(index int) engine.Scope { return engine.SectionScope(index) }

// RowScope scopes a run over a single row of a repeatable section.
func RowScope(index, row int) engine.Scope { return engine.RowScope(index, row) }

// FieldsScope scopes a run over an explicit field list.
func FieldsScope(names ...string) engine.Scope { return engine.FieldsScope(names...) }
