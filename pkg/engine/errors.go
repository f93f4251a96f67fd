// Package engine is the validation orchestrator: it runs the field rule
// validator across a requested scope (whole form, one section, one row of a
// repeatable section, or an explicit field list), maintains the error store
// and touched set for a form session, resolves symbolic reset targets, and
// derives per-field visibility/enablement.
package engine

import "fmt"

// StructuralError marks a schema/data mismatch: a section index out of
// range, an array name with no matching section, a snapshot whose shape
// contradicts the schema, or a reset token resolving to nothing. It aborts
// the current call; it is never recorded as a field message because it
// signals an authoring defect rather than bad user input.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "engine: " + e.Reason
}

func structuralf(format string, args ...any) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}
