package condition

import "testing"

func TestEvaluateLeaf(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil)
	snapshot := map[string]any{"status": "active", "age": 30}

	if !eval.Evaluate(Leaf("status", OpEquals, "active"), snapshot) {
		t.Fatalf("leaf should hold for matching value")
	}
	if eval.Evaluate(Leaf("status", OpEquals, "inactive"), snapshot) {
		t.Fatalf("leaf should fail for mismatched value")
	}
	if eval.Evaluate(Leaf("missing", OpEquals, "x"), snapshot) {
		t.Fatalf("absent field should compare as nil and fail")
	}
}

func TestEvaluateComposite(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil)
	snapshot := map[string]any{"a": 1, "b": 2}

	and := And(
		*Leaf("a", OpEquals, 1),
		*Leaf("b", OpEquals, 2),
	)
	if !eval.Evaluate(and, snapshot) {
		t.Fatalf("AND over two holding leaves should hold")
	}

	or := Or(
		*Leaf("a", OpEquals, 99),
		*Leaf("b", OpEquals, 2),
	)
	if !eval.Evaluate(or, snapshot) {
		t.Fatalf("OR with one holding leaf should hold")
	}

	nested := And(
		*Leaf("a", OpEquals, 1),
		*Or(*Leaf("b", OpEquals, 5), *Leaf("b", OpEquals, 2)),
	)
	if !eval.Evaluate(nested, snapshot) {
		t.Fatalf("nested composite should hold")
	}
}

func TestEvaluateVacuousComposites(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil)
	snapshot := map[string]any{}

	if !eval.Evaluate(&Condition{Logic: LogicAnd, Conditions: []Condition{}}, snapshot) {
		t.Fatalf("empty AND is vacuously true")
	}
	if eval.Evaluate(&Condition{Logic: LogicOr, Conditions: []Condition{}}, snapshot) {
		t.Fatalf("empty OR is vacuously false")
	}
}

func TestEvaluateDegenerateConditions(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil)
	snapshot := map[string]any{"a": 1}

	if !eval.Evaluate(nil, snapshot) {
		t.Fatalf("nil condition should pass")
	}
	if !eval.Evaluate(&Condition{}, snapshot) {
		t.Fatalf("zero condition should pass")
	}
	if !eval.Evaluate(&Condition{Field: "a"}, snapshot) {
		t.Fatalf("condition with no operator is not a leaf and should pass")
	}
	if eval.Evaluate(Leaf("a", "noSuchOperator", 1), snapshot) {
		t.Fatalf("unknown operator in a leaf should fail the leaf")
	}
}

func TestEvaluateDoesNotMutateSnapshot(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator(nil)
	snapshot := map[string]any{"a": 1, "b": "x"}

	eval.Evaluate(And(*Leaf("a", OpEquals, 1), *Leaf("b", OpIsNotEmpty, nil)), snapshot)

	if len(snapshot) != 2 || snapshot["a"] != 1 || snapshot["b"] != "x" {
		t.Fatalf("snapshot mutated during evaluation: %v", snapshot)
	}
}
