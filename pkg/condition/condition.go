// Package condition implements the boolean expression trees that gate
// validation entries, option variants, and field enablement. A Condition is
// either a leaf comparing one snapshot value against a literal, or a
// combinator reducing child conditions with AND/OR. Evaluation is pure: the
// same snapshot always produces the same answer and no input can make it
// panic.
package condition

// Logic names the combinator applied to a Condition's children.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is a node in a guard expression tree. Leaf nodes carry Field,
// Operator, and Value; combinator nodes carry Logic and Conditions. A node
// with neither shape evaluates to true so an absent guard never blocks.
type Condition struct {
	Field    string `json:"field,omitempty" yaml:"field,omitempty"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`

	Logic      Logic       `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Leaf builds a single-field comparison condition.
func Leaf(field, operator string, value any) *Condition {
	return &Condition{Field: field, Operator: operator, Value: value}
}

// And combines conditions requiring every child to hold.
func And(conditions ...Condition) *Condition {
	return &Condition{Logic: LogicAnd, Conditions: conditions}
}

// Or combines conditions requiring at least one child to hold.
func Or(conditions ...Condition) *Condition {
	return &Condition{Logic: LogicOr, Conditions: conditions}
}

// IsZero reports whether the condition carries neither a leaf comparison nor
// a combinator.
func (c *Condition) IsZero() bool {
	if c == nil {
		return true
	}
	return c.Field == "" && c.Operator == "" && c.Logic == "" && len(c.Conditions) == 0
}
