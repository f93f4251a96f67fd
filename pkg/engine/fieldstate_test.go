package engine

import (
	"testing"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

func enablementForm() *schema.Form {
	return &schema.Form{
		Sections: []schema.Section{{
			ID: "main",
			Fields: []schema.Field{
				{Name: "plan"},
				{
					Name:    "frozen",
					Disable: &schema.Disable{Always: true},
				},
				{
					Name: "coupon",
					Disable: &schema.Disable{
						When: condition.Leaf("plan", condition.OpEquals, "free"),
					},
				},
				{
					Name: "both_gates",
					Disable: &schema.Disable{
						Logic: condition.LogicAnd,
						Conditions: []condition.Condition{
							*condition.Leaf("plan", condition.OpEquals, "free"),
							*condition.Leaf("plan", condition.OpEquals, "pro"),
						},
					},
				},
				{
					Name: "company",
					Validations: []schema.ValidationEntry{{
						Hide: true,
						When: condition.Leaf("plan", condition.OpEquals, "personal"),
					}},
				},
			},
		}},
	}
}

func newEnablementSession(t *testing.T, values map[string]any) *Session {
	t.Helper()
	eng, err := New(enablementForm())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return eng.NewSession(values)
}

func TestFieldStatesDisable(t *testing.T) {
	t.Parallel()

	session := newEnablementSession(t, map[string]any{"plan": "free"})
	states := session.FieldStates()

	if states["frozen"].IsEnable {
		t.Fatalf("always-disabled field reported enabled")
	}
	if states["coupon"].IsEnable {
		t.Fatalf("condition holds, coupon should be disabled")
	}
	if !states["both_gates"].IsEnable {
		t.Fatalf("AND with a failing child should leave the field enabled")
	}

	session = newEnablementSession(t, map[string]any{"plan": "pro"})
	states = session.FieldStates()
	if !states["coupon"].IsEnable {
		t.Fatalf("condition fails, coupon should be enabled")
	}
}

func TestFieldStatesVisibility(t *testing.T) {
	t.Parallel()

	session := newEnablementSession(t, map[string]any{"plan": "personal"})
	if states := session.FieldStates(); states["company"].IsVisible {
		t.Fatalf("holding hide guard should make company invisible")
	}

	session = newEnablementSession(t, map[string]any{"plan": "business"})
	if states := session.FieldStates(); !states["company"].IsVisible {
		t.Fatalf("failing hide guard should keep company visible")
	}
}

func TestInvisibleFieldsSkipValidation(t *testing.T) {
	t.Parallel()

	form := enablementForm()
	company, _ := form.Sections[0].Field("company")
	company.Validations = append(company.Validations, schema.ValidationEntry{
		Required: true,
		Message:  "company is required",
	})

	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	session := eng.NewSession(map[string]any{"plan": "personal"})
	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := session.Errors().Flat("company"); len(got) != 0 {
		t.Fatalf("invisible field must not validate, got %v", got)
	}

	session = eng.NewSession(map[string]any{"plan": "business"})
	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := session.Errors().Flat("company"); len(got) != 1 {
		t.Fatalf("visible empty required field should fail, got %v", got)
	}
}

func TestDisableClearsValueOnChange(t *testing.T) {
	t.Parallel()

	session := newEnablementSession(t, map[string]any{"plan": "pro", "coupon": "SAVE10"})

	if err := session.SetValue("plan", "free"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := session.Values()["coupon"]; got != "" {
		t.Fatalf("newly disabled coupon should be cleared, got %v", got)
	}
}

func TestDisableClearOptOut(t *testing.T) {
	t.Parallel()

	form := enablementForm()
	keep := false
	coupon, _ := form.Sections[0].Field("coupon")
	coupon.ResetValueWhenDisable = &keep

	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	session := eng.NewSession(map[string]any{"plan": "pro", "coupon": "SAVE10"})

	if err := session.SetValue("plan", "free"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := session.Values()["coupon"]; got != "SAVE10" {
		t.Fatalf("opt-out field must keep its value when disabled, got %v", got)
	}
}

func TestVisibleOptions(t *testing.T) {
	t.Parallel()

	form := enablementForm()
	plan, _ := form.Sections[0].Field("plan")
	plan.Options = []schema.OptionGroup{
		{Options: []schema.Option{{Label: "Free", Value: "free"}}},
		{
			When:    condition.Leaf("frozen", condition.OpIsFalsy, nil),
			Options: []schema.Option{{Label: "Pro", Value: "pro"}},
		},
		{
			When:    condition.Leaf("frozen", condition.OpEquals, true),
			Options: []schema.Option{{Label: "Enterprise", Value: "enterprise"}},
		},
	}

	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	session := eng.NewSession(nil)

	options := session.VisibleOptions(plan)
	if len(options) != 2 {
		t.Fatalf("expected Free and Pro while frozen is unset, got %v", options)
	}
	if options[0].Label != "Free" || options[1].Label != "Pro" {
		t.Fatalf("unexpected option order: %v", options)
	}
}
