// Package schema defines the declarative form model the validation engine
// consumes: sections of fields, per-field validation entries, guard
// conditions, reset directives, and remote option descriptors. Documents can
// be authored in Go directly or parsed from JSON/YAML with ParseDocument.
package schema

import (
	"github.com/goliatone/go-formrules/pkg/condition"
)

// Form is the root schema for one form session. It is immutable for the
// lifetime of the session; the engine never writes back into it.
type Form struct {
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string    `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`

	// GlobalValidations hold form-wide entries; only When, Message, and
	// Custom are consulted for them.
	GlobalValidations []ValidationEntry `json:"globalValidations,omitempty" yaml:"globalValidations,omitempty"`

	Defaults       map[string]any  `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	RemoteDefaults *RemoteDefaults `json:"remoteDefaults,omitempty" yaml:"remoteDefaults,omitempty"`
	ActionButtons  []ActionButton  `json:"actionButtons,omitempty" yaml:"actionButtons,omitempty"`
}

// Section groups fields for display and scoped validation. A section with
// IsArray set is repeatable: the snapshot stores rows under ArrayName and
// every field validates once per row against that row's local snapshot.
type Section struct {
	Title    string  `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string  `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Fields   []Field `json:"fields" yaml:"fields"`

	IsArray      bool             `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	ArrayName    string           `json:"arrayName,omitempty" yaml:"arrayName,omitempty"`
	MinItems     int              `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems     int              `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	DefaultItems []map[string]any `json:"defaultItems,omitempty" yaml:"defaultItems,omitempty"`

	GlobalValidations []ValidationEntry `json:"globalValidations,omitempty" yaml:"globalValidations,omitempty"`
	ActionButtons     []ActionButton    `json:"actionButtons,omitempty" yaml:"actionButtons,omitempty"`
}

// Field describes one input: display metadata, its ordered validation
// entries, enablement rules, option sources, and reset directives.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	// Grid layout hints carried through for the rendering layer.
	Cols      int `json:"cols,omitempty" yaml:"cols,omitempty"`
	LabelCols int `json:"labelCols,omitempty" yaml:"labelCols,omitempty"`
	InputCols int `json:"inputCols,omitempty" yaml:"inputCols,omitempty"`

	Validations []ValidationEntry `json:"validations,omitempty" yaml:"validations,omitempty"`
	Disable     *Disable          `json:"disable,omitempty" yaml:"disable,omitempty"`

	Options       []OptionGroup  `json:"options,omitempty" yaml:"options,omitempty"`
	RemoteOptions *RemoteOptions `json:"remoteOptions,omitempty" yaml:"remoteOptions,omitempty"`

	ResetValueFields *Target  `json:"resetValueFields,omitempty" yaml:"resetValueFields,omitempty"`
	ResetErrorFields *Target  `json:"resetErrorFields,omitempty" yaml:"resetErrorFields,omitempty"`
	Category         []string `json:"category,omitempty" yaml:"category,omitempty"`

	// ResetValueWhenDisable defaults to true: a field that becomes disabled
	// has its stored value cleared unless it opts out.
	ResetValueWhenDisable *bool `json:"resetValueWhenDisable,omitempty" yaml:"resetValueWhenDisable,omitempty"`
}

// ClearOnDisable reports whether the engine should blank the field's value
// when it becomes disabled.
func (f *Field) ClearOnDisable() bool {
	return f.ResetValueWhenDisable == nil || *f.ResetValueWhenDisable
}

// ValidationEntry is one guarded bundle of checks. When the guard is absent
// or holds, Required, Rules, Custom, and Dependencies all apply; when the
// guard fails the whole entry is inert for that snapshot. Hide marks the
// field invisible while the guard holds.
type ValidationEntry struct {
	Required bool                 `json:"required,omitempty" yaml:"required,omitempty"`
	Message  string               `json:"message,omitempty" yaml:"message,omitempty"`
	When     *condition.Condition `json:"when,omitempty" yaml:"when,omitempty"`
	Rules    []Rule               `json:"rules,omitempty" yaml:"rules,omitempty"`
	Custom   CustomRefs           `json:"custom,omitempty" yaml:"custom,omitempty"`
	Dependencies []DependencyRule `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Hide     bool                 `json:"hide,omitempty" yaml:"hide,omitempty"`
}

// Rule applies a named operator to the field's own value. CompareOperator
// and Offset only participate when the operator is compareWithOffset.
type Rule struct {
	Operator        string  `json:"operator" yaml:"operator"`
	Value           any     `json:"value,omitempty" yaml:"value,omitempty"`
	Message         string  `json:"message,omitempty" yaml:"message,omitempty"`
	CompareOperator string  `json:"compareOperator,omitempty" yaml:"compareOperator,omitempty"`
	Offset          float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// DependencyRule compares the field's value against another field's live
// value using each listed rule's operator.
type DependencyRule struct {
	Field string `json:"field" yaml:"field"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// CustomRef names a registered custom validator. Message, when set,
// overrides whatever message the validator returns.
type CustomRef struct {
	Validator string `json:"validator" yaml:"validator"`
	Options   any    `json:"options,omitempty" yaml:"options,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
}

// CustomRefs accepts either a single object or a list in documents.
type CustomRefs []CustomRef

// Disable controls field enablement. Always disables unconditionally; When
// disables while its condition holds; Logic+Conditions aggregate several
// conditions with AND/OR. Documents may write it as a bare boolean.
type Disable struct {
	Always     bool                  `json:"always,omitempty" yaml:"always,omitempty"`
	When       *condition.Condition  `json:"when,omitempty" yaml:"when,omitempty"`
	Logic      condition.Logic       `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []condition.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Option is one selectable label/value pair.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// OptionGroup gates a slice of options behind an optional condition. A nil
// When means the options are always offered.
type OptionGroup struct {
	When    *condition.Condition `json:"when,omitempty" yaml:"when,omitempty"`
	Options []Option             `json:"options" yaml:"options"`
}

// RemoteOptions describes a lookup endpoint supplying a field's options.
type RemoteOptions struct {
	EndpointURL  string             `json:"endpointUrl" yaml:"endpointUrl"`
	LabelKey     string             `json:"labelKey" yaml:"labelKey"`
	ValueKey     string             `json:"valueKey" yaml:"valueKey"`
	Path         string             `json:"path,omitempty" yaml:"path,omitempty"`
	Dependencies []RemoteDependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// RemoteDependency maps a snapshot field onto a request parameter. A missing
// dependency value suppresses the request entirely.
type RemoteDependency struct {
	Field string `json:"field" yaml:"field"`
	Param string `json:"param" yaml:"param"`
}

// RemoteDefaults points at an endpoint providing initial form values.
type RemoteDefaults struct {
	EndpointURL string `json:"endpointUrl" yaml:"endpointUrl"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ActionButton describes a submit/reset control and the validation scope it
// triggers.
type ActionButton struct {
	Key            string  `json:"key" yaml:"key"`
	Label          string  `json:"label" yaml:"label"`
	Type           string  `json:"type,omitempty" yaml:"type,omitempty"`
	ValidateFields *Target `json:"validateFields,omitempty" yaml:"validateFields,omitempty"`
}

// Target is a symbolic field-set specifier used by reset directives and
// action buttons: the ALL sentinel, the SECTION sentinel, or an explicit
// token list mixing plain names, "#sectionID", and "$category".
type Target struct {
	All     bool
	Section bool
	Fields  []string
}

// TargetAll returns the every-field sentinel.
func TargetAll() *Target { return &Target{All: true} }

// TargetSection returns the current-section sentinel.
func TargetSection() *Target { return &Target{Section: true} }

// TargetFields returns an explicit token list target.
func TargetFields(tokens ...string) *Target { return &Target{Fields: tokens} }

// FieldState carries the derived visibility/enablement flags for one field.
// It is never authored in a document.
type FieldState struct {
	IsVisible bool `json:"isVisible"`
	IsEnable  bool `json:"isEnable"`
}
