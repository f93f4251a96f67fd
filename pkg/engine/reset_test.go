package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/schema"
)

func TestResolveResetTargetsTokens(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	// "#identity" expands before "$contactables"; email appears in both and
	// is kept at its first position.
	got, err := session.ResolveResetTargets(schema.TargetFields("#identity", "$contactables", "is_member"), 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"full_name", "email", "member_id", "is_member"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveResetTargetsSentinels(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{"full_name": "Ada", "email": "a@b.co"})

	all, err := session.ResolveResetTargets(schema.TargetAll(), 0)
	if err != nil {
		t.Fatalf("resolve ALL: %v", err)
	}
	// ALL covers every snapshot key, the seeded array included.
	want := []string{"contacts", "email", "full_name"}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("ALL mismatch (-want +got):\n%s", diff)
	}

	section, err := session.ResolveResetTargets(schema.TargetSection(), 1)
	if err != nil {
		t.Fatalf("resolve SECTION: %v", err)
	}
	if diff := cmp.Diff([]string{"is_member", "member_id"}, section); diff != "" {
		t.Fatalf("SECTION mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveResetTargetsFailures(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)
	var structural *StructuralError

	_, err := session.ResolveResetTargets(schema.TargetFields("#no_such_section"), 0)
	if !errors.As(err, &structural) {
		t.Fatalf("unknown section token must be structural, got %v", err)
	}
	_, err = session.ResolveResetTargets(schema.TargetFields("$no_such_tag"), 0)
	if !errors.As(err, &structural) {
		t.Fatalf("unknown category token must be structural, got %v", err)
	}
	_, err = session.ResolveResetTargets(schema.TargetFields("no_such_field"), 0)
	if !errors.As(err, &structural) {
		t.Fatalf("unknown field token must be structural, got %v", err)
	}
	_, err = session.ResolveResetTargets(schema.TargetSection(), 99)
	if !errors.As(err, &structural) {
		t.Fatalf("out-of-range SECTION must be structural, got %v", err)
	}
}

func TestSetValueAppliesResetDirectives(t *testing.T) {
	t.Parallel()

	form := registrationForm()
	identity := &form.Sections[0]
	identity.Fields[0].ResetValueFields = schema.TargetFields("email")
	identity.Fields[0].ResetErrorFields = schema.TargetFields("email")

	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	session := eng.NewSession(map[string]any{"email": "old@example.com"})
	session.Errors().SetFlat("email", []string{"stale message"})

	if err := session.SetValue("full_name", "Grace"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	if session.Values()["email"] != "" {
		t.Fatalf("reset directive should blank the target value, got %v", session.Values()["email"])
	}
	if got := session.Errors().Flat("email"); len(got) != 0 {
		t.Fatalf("reset directive should blank the target errors, got %v", got)
	}
	if session.Values()["full_name"] != "Grace" {
		t.Fatalf("the changed field keeps its new value")
	}
}
