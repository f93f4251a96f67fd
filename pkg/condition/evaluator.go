package condition

// Evaluator resolves Condition trees against a value snapshot using a shared
// operator table.
type Evaluator struct {
	ops *Operators
}

// NewEvaluator constructs an Evaluator. A nil table falls back to the
// built-in operators.
func NewEvaluator(ops *Operators) *Evaluator {
	if ops == nil {
		ops = NewOperators()
	}
	return &Evaluator{ops: ops}
}

// Operators exposes the underlying table so callers can register extensions
// through the evaluator they already hold.
func (e *Evaluator) Operators() *Operators {
	return e.ops
}

// Evaluate resolves cond against snapshot. A nil or empty condition holds
// unconditionally. Combinators reduce their children with AND (vacuously
// true over no children) or OR (vacuously false). Leaves look the field up
// in the snapshot, passing an absent value through as nil so the operator
// decides; unknown operators evaluate to false.
func (e *Evaluator) Evaluate(cond *Condition, snapshot map[string]any) bool {
	if cond.IsZero() {
		return true
	}

	if cond.Logic != "" && cond.Conditions != nil {
		switch cond.Logic {
		case LogicAnd:
			for i := range cond.Conditions {
				if !e.Evaluate(&cond.Conditions[i], snapshot) {
					return false
				}
			}
			return true
		case LogicOr:
			for i := range cond.Conditions {
				if e.Evaluate(&cond.Conditions[i], snapshot) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}

	if cond.Field != "" && cond.Operator != "" {
		fn, ok := e.ops.Lookup(cond.Operator)
		if !ok {
			return false
		}
		return fn(snapshot[cond.Field], cond.Value)
	}

	return true
}
