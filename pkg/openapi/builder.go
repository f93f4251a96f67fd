// Package openapi derives form schemas from OpenAPI component schemas: an
// object component becomes a flat section, an array-of-objects property
// becomes a repeatable section, and the component's string/number facets
// become validation rules.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

// Option customises a Builder.
type Option func(*Builder)

// WithExternalRefs allows the loader to resolve references outside the
// document. Off by default.
func WithExternalRefs(enabled bool) Option {
	return func(b *Builder) {
		b.externalRefs = enabled
	}
}

// Builder converts OpenAPI component schemas into form schemas.
type Builder struct {
	externalRefs bool
}

// NewBuilder constructs a Builder.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// BuildForm loads an OpenAPI document and derives a form from the named
// component schema. Property order in OpenAPI is not significant, so fields
// are emitted in sorted name order for determinism.
func (b *Builder) BuildForm(ctx context.Context, data []byte, component string) (*schema.Form, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: b.externalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	if doc.Components == nil {
		return nil, errors.New("openapi: document has no components")
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: component schema %q not found", component)
	}
	root := ref.Value
	if !root.Type.Is(openapi3.TypeObject) {
		return nil, fmt.Errorf("openapi: component schema %q is not an object", component)
	}

	form := &schema.Form{Title: root.Title}
	if form.Title == "" {
		form.Title = component
	}

	main := schema.Section{Title: form.Title, ID: component}
	required := requiredSet(root.Required)

	for _, name := range sortedProperties(root.Properties) {
		prop := root.Properties[name].Value
		if prop == nil {
			continue
		}

		if prop.Type.Is(openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil &&
			prop.Items.Value.Type.Is(openapi3.TypeObject) {
			form.Sections = append(form.Sections, buildArraySection(name, prop))
			continue
		}

		main.Fields = append(main.Fields, buildField(name, prop, required[name]))
	}

	if len(main.Fields) > 0 {
		form.Sections = append([]schema.Section{main}, form.Sections...)
	}
	if len(form.Sections) == 0 {
		return nil, fmt.Errorf("openapi: component schema %q yields no fields", component)
	}

	if err := schema.Validate(form); err != nil {
		return nil, err
	}
	return form, nil
}

func buildArraySection(name string, prop *openapi3.Schema) schema.Section {
	items := prop.Items.Value
	section := schema.Section{
		Title:     titleOf(prop, name),
		ID:        name,
		IsArray:   true,
		ArrayName: name,
	}
	if prop.MinItems > 0 {
		section.MinItems = int(prop.MinItems)
	}
	if prop.MaxItems != nil {
		section.MaxItems = int(*prop.MaxItems)
	}

	required := requiredSet(items.Required)
	for _, field := range sortedProperties(items.Properties) {
		value := items.Properties[field].Value
		if value == nil {
			continue
		}
		section.Fields = append(section.Fields, buildField(field, value, required[field]))
	}
	return section
}

func buildField(name string, prop *openapi3.Schema, required bool) schema.Field {
	field := schema.Field{
		Name:        name,
		Label:       titleOf(prop, name),
		Kind:        kindOf(prop),
		Placeholder: prop.Description,
	}

	entry := schema.ValidationEntry{Required: required}
	entry.Rules = facetRules(prop)
	if required || len(entry.Rules) > 0 {
		field.Validations = []schema.ValidationEntry{entry}
	}

	if len(prop.Enum) > 0 {
		group := schema.OptionGroup{Options: make([]schema.Option, 0, len(prop.Enum))}
		for _, value := range prop.Enum {
			group.Options = append(group.Options, schema.Option{
				Label: fmt.Sprint(value),
				Value: value,
			})
		}
		field.Options = []schema.OptionGroup{group}
	}
	return field
}

// facetRules maps the schema's validation facets onto operator rules.
func facetRules(prop *openapi3.Schema) []schema.Rule {
	var rules []schema.Rule
	if prop.MinLength > 0 {
		rules = append(rules, schema.Rule{Operator: condition.OpMinLength, Value: float64(prop.MinLength)})
	}
	if prop.MaxLength != nil {
		rules = append(rules, schema.Rule{Operator: condition.OpMaxLength, Value: float64(*prop.MaxLength)})
	}
	if prop.Pattern != "" {
		rules = append(rules, schema.Rule{Operator: condition.OpRegex, Value: prop.Pattern})
	}
	if prop.Min != nil {
		rules = append(rules, schema.Rule{Operator: condition.OpGreaterThanOrEqual, Value: *prop.Min})
	}
	if prop.Max != nil {
		rules = append(rules, schema.Rule{Operator: condition.OpLessThanOrEqual, Value: *prop.Max})
	}
	if prop.Format == "email" {
		rules = append(rules, schema.Rule{Operator: condition.OpIsEmail})
	}
	if prop.Format == "uri" || prop.Format == "url" {
		rules = append(rules, schema.Rule{Operator: condition.OpIsURL})
	}
	return rules
}

func kindOf(prop *openapi3.Schema) string {
	if len(prop.Enum) > 0 {
		return "select"
	}
	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		return "checkbox"
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		return "number"
	}
	switch prop.Format {
	case "date", "date-time":
		return "date"
	case "email":
		return "email"
	case "password":
		return "password"
	}
	return "text"
}

func titleOf(prop *openapi3.Schema, fallback string) string {
	if prop.Title != "" {
		return prop.Title
	}
	return fallback
}

func requiredSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func sortedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
