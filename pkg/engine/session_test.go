package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

// registrationForm mirrors a small sign-up flow: two flat sections plus a
// repeatable contacts section.
func registrationForm() *schema.Form {
	return &schema.Form{
		Title: "Registration",
		Sections: []schema.Section{
			{
				ID:    "identity",
				Title: "Identity",
				Fields: []schema.Field{
					{
						Name: "full_name",
						Validations: []schema.ValidationEntry{
							{Required: true, Message: "name is required"},
						},
					},
					{
						Name:     "email",
						Category: []string{"contactables"},
						Validations: []schema.ValidationEntry{
							{
								Required: true,
								Message:  "email is required",
								Rules: []schema.Rule{
									{Operator: condition.OpIsEmail, Message: "not an email"},
								},
							},
						},
					},
				},
			},
			{
				ID:    "membership",
				Title: "Membership",
				Fields: []schema.Field{
					{Name: "is_member"},
					{
						Name:     "member_id",
						Category: []string{"contactables"},
						Validations: []schema.ValidationEntry{
							{
								Required: true,
								Message:  "member id is required",
								When:     condition.Leaf("is_member", condition.OpEquals, true),
							},
						},
					},
				},
			},
			{
				Title:     "Contacts",
				IsArray:   true,
				ArrayName: "contacts",
				Fields: []schema.Field{
					{
						Name: "phone",
						Validations: []schema.ValidationEntry{
							{Required: true, Message: "phone is required"},
						},
					},
					{Name: "note"},
				},
			},
		},
	}
}

func newTestSession(t *testing.T, values map[string]any) *Session {
	t.Helper()
	eng, err := New(registrationForm())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return eng.NewSession(values)
}

func TestNewSessionSeedsDefaults(t *testing.T) {
	t.Parallel()

	form := registrationForm()
	form.Defaults = map[string]any{"is_member": false}
	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	session := eng.NewSession(map[string]any{"full_name": "Ada"})

	if session.Values()["is_member"] != false {
		t.Fatalf("schema default should seed the snapshot")
	}
	if session.Values()["full_name"] != "Ada" {
		t.Fatalf("caller values should override nothing here and be kept")
	}
	rows, err := session.rows("contacts")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("repeatable section should seed one empty row, got %d", len(rows))
	}
}

func TestValidateAllRecordsEveryField(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{
		"full_name": "Ada Lovelace",
		"email":     "not-an-email",
		"contacts": []map[string]any{
			{"phone": "123", "note": ""},
			{"phone": "", "note": "call after 5"},
		},
	})

	valid, err := session.Validate(All())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if valid {
		t.Fatalf("run with failures should report invalid")
	}

	if got := session.Errors().Flat("full_name"); len(got) != 0 {
		t.Fatalf("full_name should pass, got %v", got)
	}
	if diff := cmp.Diff([]string{"not an email"}, session.Errors().Flat("email")); diff != "" {
		t.Fatalf("email errors mismatch (-want +got):\n%s", diff)
	}

	rows := session.Errors().Rows("contacts")
	if len(rows) != 2 {
		t.Fatalf("expected 2 error rows, got %d", len(rows))
	}
	if len(rows[0]["phone"]) != 0 {
		t.Fatalf("row 0 phone should pass, got %v", rows[0]["phone"])
	}
	if diff := cmp.Diff([]string{"phone is required"}, rows[1]["phone"]); diff != "" {
		t.Fatalf("row 1 phone mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAllIsIdempotent(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{"email": "bad"})

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := session.Errors().Clone()
	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, key := range first.Keys() {
		want, _ := first.Bucket(key)
		got, ok := session.Errors().Bucket(key)
		if !ok {
			t.Fatalf("key %q vanished on the second run", key)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("key %q drifted between identical runs (-want +got):\n%s", key, diff)
		}
	}
}

func TestValidateAllDropsStaleRows(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{
		"contacts": []map[string]any{
			{"phone": ""}, {"phone": ""}, {"phone": ""},
		},
	})

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := len(session.Errors().Rows("contacts")); got != 3 {
		t.Fatalf("expected 3 error rows, got %d", got)
	}

	session.Values()["contacts"] = []map[string]any{{"phone": "123"}}
	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(session.Errors().Rows("contacts")); got != 1 {
		t.Fatalf("shrunken array should drop stale error rows, got %d", got)
	}
}

func TestValidateSectionBlanksOtherKeys(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("seed errors: %v", err)
	}
	if len(session.Errors().Flat("full_name")) == 0 {
		t.Fatalf("expected full_name to fail on the seed run")
	}

	// Section 1 (membership) passes because is_member is unset, so the guard
	// on member_id fails.
	valid, err := session.Validate(SectionScope(1))
	if err != nil {
		t.Fatalf("section run: %v", err)
	}
	if !valid {
		t.Fatalf("membership section should pass while is_member is unset")
	}
	if got := session.Errors().Flat("full_name"); len(got) != 0 {
		t.Fatalf("narrower pass should blank other keys, full_name still has %v", got)
	}
}

func TestValidateRowLeavesSiblingsAlone(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{
		"contacts": []map[string]any{
			{"phone": ""},
			{"phone": ""},
		},
	})

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("seed errors: %v", err)
	}

	rows, err := session.rows("contacts")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	rows[1]["phone"] = "123"

	valid, err := session.Validate(RowScope(2, 1))
	if err != nil {
		t.Fatalf("row run: %v", err)
	}
	if !valid {
		t.Fatalf("fixed row should pass")
	}

	errRows := session.Errors().Rows("contacts")
	if diff := cmp.Diff([]string{"phone is required"}, errRows[0]["phone"]); diff != "" {
		t.Fatalf("row 0 must keep its prior errors (-want +got):\n%s", diff)
	}
	if len(errRows[1]["phone"]) != 0 {
		t.Fatalf("row 1 should be clean, got %v", errRows[1]["phone"])
	}
}

func TestValidateRowOnFlatSectionIsStructural(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	_, err := session.Validate(RowScope(0, 0))
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("row scope into a flat section must be a StructuralError, got %v", err)
	}
}

func TestValidateFieldsScope(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{"email": "ada@example.com"})

	valid, err := session.Validate(FieldsScope("email"))
	if err != nil {
		t.Fatalf("fields run: %v", err)
	}
	if !valid {
		t.Fatalf("valid email should pass")
	}

	_, err = session.Validate(FieldsScope("email", "no_such_field"))
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("unknown field in explicit scope must be a StructuralError, got %v", err)
	}
}

func TestRowSnapshotSeesWholeForm(t *testing.T) {
	t.Parallel()

	form := registrationForm()
	contacts := &form.Sections[2]
	contacts.Fields[0].Validations = []schema.ValidationEntry{{
		Required: true,
		Message:  "phone is required for members",
		When:     condition.Leaf("is_member", condition.OpEquals, true),
	}}

	eng, err := New(form)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	session := eng.NewSession(map[string]any{
		"is_member": true,
		"contacts":  []map[string]any{{"phone": ""}},
	})

	if _, err := session.Validate(RowScope(2, 0)); err != nil {
		t.Fatalf("row run: %v", err)
	}
	rows := session.Errors().Rows("contacts")
	if diff := cmp.Diff([]string{"phone is required for members"}, rows[0]["phone"]); diff != "" {
		t.Fatalf("row guard should read flat values (-want +got):\n%s", diff)
	}
}

func TestBlurTouchesAndValidates(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	messages, err := session.Blur("full_name")
	if err != nil {
		t.Fatalf("blur: %v", err)
	}
	if diff := cmp.Diff([]string{"name is required"}, messages); diff != "" {
		t.Fatalf("blur result mismatch (-want +got):\n%s", diff)
	}
	if !session.Touched("full_name") {
		t.Fatalf("blur must mark the field touched")
	}
	if len(session.Errors().Flat("email")) != 0 {
		t.Fatalf("single-field merge must not touch siblings")
	}
}

func TestSetValueRevalidatesOnlyTouchedFields(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	if err := session.SetValue("email", "still-bad"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if len(session.Errors().Flat("email")) != 0 {
		t.Fatalf("untouched field must not gain errors on change")
	}

	if _, err := session.Blur("email"); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if err := session.SetValue("email", "ada@example.com"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := session.Errors().Flat("email"); len(got) != 0 {
		t.Fatalf("touched field should revalidate clean on fix, got %v", got)
	}
}

func TestSetRowValueRevalidatesRow(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{
		"contacts": []map[string]any{{"phone": ""}, {"phone": ""}},
	})

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := session.SetRowValue("contacts", 0, "phone", "123"); err != nil {
		t.Fatalf("set row value: %v", err)
	}

	rows := session.Errors().Rows("contacts")
	if len(rows[0]["phone"]) != 0 {
		t.Fatalf("edited row should be revalidated, got %v", rows[0]["phone"])
	}
	if diff := cmp.Diff([]string{"phone is required"}, rows[1]["phone"]); diff != "" {
		t.Fatalf("sibling row must keep its errors (-want +got):\n%s", diff)
	}
}

func TestAppendAndRemoveRow(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, nil)

	if err := session.AppendRow("contacts"); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, err := session.rows("contacts")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after append, got %d", len(rows))
	}

	if err := session.RemoveRow("contacts", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rows, err = session.rows("contacts")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after remove, got %d", len(rows))
	}

	if err := session.RemoveRow("contacts", 5); err == nil {
		t.Fatalf("out-of-range remove must fail")
	}
}

func TestMalformedArrayValueIsStructural(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{"contacts": "oops"})

	_, err := session.Validate(All())
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("non-array snapshot under an array name must be structural, got %v", err)
	}
}

func TestClearSection(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, map[string]any{"full_name": "Ada", "email": "bad"})

	if _, err := session.Validate(All()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := session.ClearSection(0); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if session.Values()["full_name"] != "" {
		t.Fatalf("cleared section values should be blank")
	}
	if len(session.Errors().Flat("email")) != 0 {
		t.Fatalf("cleared section errors should be blank")
	}
	if session.Touched("full_name") {
		t.Fatalf("cleared fields should forget their touched state")
	}
}
