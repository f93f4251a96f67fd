package engine

import (
	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/schema"
)

// Session holds the mutable state of one form: the value snapshot, the error
// store, and the touched set. A session is single-writer; every mutation is
// a whole-bucket replacement so readers never observe a half-updated scope.
type Session struct {
	engine  *Engine
	values  map[string]any
	errors  *ErrorStore
	touched map[string]bool
}

// NewSession starts a session seeded with the schema's defaults: the form's
// default value map, and for each repeatable section either its default
// items or a single empty row.
func (e *Engine) NewSession(initial map[string]any) *Session {
	values := make(map[string]any, len(initial)+len(e.form.Defaults))
	for key, value := range e.form.Defaults {
		values[key] = value
	}
	for key, value := range initial {
		values[key] = value
	}

	for i := range e.form.Sections {
		section := &e.form.Sections[i]
		if !section.IsArray {
			continue
		}
		if _, ok := values[section.ArrayName]; ok {
			continue
		}
		if len(section.DefaultItems) > 0 {
			rows := make([]map[string]any, 0, len(section.DefaultItems))
			for _, item := range section.DefaultItems {
				row := make(map[string]any, len(item))
				for key, value := range item {
					row[key] = value
				}
				rows = append(rows, row)
			}
			values[section.ArrayName] = rows
			continue
		}
		values[section.ArrayName] = []map[string]any{emptyRow(section)}
	}

	return &Session{
		engine:  e,
		values:  values,
		errors:  NewErrorStore(),
		touched: make(map[string]bool),
	}
}

func emptyRow(section *schema.Section) map[string]any {
	row := make(map[string]any, len(section.Fields))
	for i := range section.Fields {
		row[section.Fields[i].Name] = ""
	}
	return row
}

// Values returns the live value snapshot. Callers must treat it as
// read-only; mutations go through SetValue and SetRowValue.
func (s *Session) Values() map[string]any { return s.values }

// Errors returns the live error store.
func (s *Session) Errors() *ErrorStore { return s.errors }

// Touched reports whether the field has been validated at least once.
func (s *Session) Touched(name string) bool { return s.touched[name] }

// Validate runs the field rule validator across the requested scope and
// reports whether every validated field passed. Structural mismatches abort
// the call with a StructuralError and leave the error store untouched for
// the failed portion.
func (s *Session) Validate(scope Scope) (bool, error) {
	switch scope.Kind {
	case ScopeAll:
		return s.validateAll()
	case ScopeSection:
		return s.validateSection(scope.Section, scope.Row)
	case ScopeFields:
		return s.validateFields(scope.Fields)
	default:
		return false, structuralf("unknown scope kind %d", scope.Kind)
	}
}

func (s *Session) validateAll() (bool, error) {
	states := s.FieldStates()
	valid := true

	for i := range s.engine.form.Sections {
		section := &s.engine.form.Sections[i]
		if section.IsArray {
			ok, err := s.validateArray(section)
			if err != nil {
				return false, err
			}
			valid = valid && ok
			continue
		}
		for j := range section.Fields {
			field := &section.Fields[j]
			if state, tracked := states[field.Name]; tracked && !state.IsVisible {
				s.errors.SetFlat(field.Name, nil)
				continue
			}
			messages := s.engine.validator.ValidateField(field.Validations, s.values[field.Name], s.values)
			s.errors.SetFlat(field.Name, messages)
			s.touched[field.Name] = true
			valid = valid && len(messages) == 0
		}
	}

	valid = s.validateGlobals() && valid
	valid = s.updateSectionDigests() && valid
	return valid, nil
}

// validateArray validates every row of a repeatable section, replacing the
// array's error bucket in full so stale rows from a shrunken array are
// dropped.
func (s *Session) validateArray(section *schema.Section) (bool, error) {
	rows, err := s.rows(section.ArrayName)
	if err != nil {
		return false, err
	}

	valid := true
	rowErrors := make([]RowErrors, len(rows))
	for r, row := range rows {
		snapshot := s.rowSnapshot(row)
		rowErrors[r] = make(RowErrors, len(section.Fields))
		for j := range section.Fields {
			field := &section.Fields[j]
			messages := s.engine.validator.ValidateField(field.Validations, row[field.Name], snapshot)
			rowErrors[r][field.Name] = messages
			s.touched[field.Name] = true
			valid = valid && len(messages) == 0
		}
	}
	s.errors.ReplaceRows(section.ArrayName, rowErrors)
	return valid, nil
}

func (s *Session) validateSection(index, row int) (bool, error) {
	if index < 0 || index >= len(s.engine.form.Sections) {
		return false, structuralf("section index %d out of range", index)
	}
	section := &s.engine.form.Sections[index]

	if row >= 0 {
		if !section.IsArray {
			return false, structuralf("section %d is not repeatable; row scope does not apply", index)
		}
		return s.validateRow(section, row)
	}

	s.errors.BlankNonReserved()
	if section.IsArray {
		return s.validateArray(section)
	}

	valid := true
	for j := range section.Fields {
		field := &section.Fields[j]
		messages := s.engine.validator.ValidateField(field.Validations, s.values[field.Name], s.values)
		s.errors.SetFlat(field.Name, messages)
		s.touched[field.Name] = true
		valid = valid && len(messages) == 0
	}
	return valid, nil
}

// validateRow validates a single row in place, leaving sibling rows exactly
// as they were.
func (s *Session) validateRow(section *schema.Section, row int) (bool, error) {
	rows, err := s.rows(section.ArrayName)
	if err != nil {
		return false, err
	}
	if row >= len(rows) {
		return false, structuralf("row %d out of range for array %q (%d rows)", row, section.ArrayName, len(rows))
	}

	valid := true
	snapshot := s.rowSnapshot(rows[row])
	for j := range section.Fields {
		field := &section.Fields[j]
		messages := s.engine.validator.ValidateField(field.Validations, rows[row][field.Name], snapshot)
		s.errors.SetRowField(section.ArrayName, row, field.Name, messages)
		s.touched[field.Name] = true
		valid = valid && len(messages) == 0
	}
	return valid, nil
}

func (s *Session) validateFields(names []string) (bool, error) {
	fields := make([]*schema.Field, 0, len(names))
	for _, name := range names {
		field, ok := s.engine.form.FlatFieldByName(name)
		if !ok {
			return false, structuralf("unknown field %q in validation scope", name)
		}
		fields = append(fields, field)
	}

	s.errors.BlankNonReserved()
	valid := true
	for _, field := range fields {
		messages := s.engine.validator.ValidateField(field.Validations, s.values[field.Name], s.values)
		s.errors.SetFlat(field.Name, messages)
		s.touched[field.Name] = true
		valid = valid && len(messages) == 0
	}
	return valid, nil
}

// ValidateField runs the validator for a single flat field and merges the
// result into the error store without touching other keys.
func (s *Session) ValidateField(name string) ([]string, error) {
	field, ok := s.engine.form.FlatFieldByName(name)
	if !ok {
		return nil, structuralf("unknown field %q", name)
	}
	messages := s.engine.validator.ValidateField(field.Validations, s.values[name], s.values)
	s.errors.SetFlat(name, messages)
	return messages, nil
}

// ValidateRowField validates one field inside one row of a repeatable
// section, merging only that cell of the error store.
func (s *Session) ValidateRowField(arrayName string, row int, name string) ([]string, error) {
	section, ok := s.engine.form.SectionByArray(arrayName)
	if !ok {
		return nil, structuralf("no repeatable section named %q", arrayName)
	}
	field, ok := section.Field(name)
	if !ok {
		return nil, structuralf("no field %q in repeatable section %q", name, arrayName)
	}
	rows, err := s.rows(arrayName)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(rows) {
		return nil, structuralf("row %d out of range for array %q (%d rows)", row, arrayName, len(rows))
	}

	snapshot := s.rowSnapshot(rows[row])
	messages := s.engine.validator.ValidateField(field.Validations, rows[row][name], snapshot)
	s.errors.SetRowField(arrayName, row, name, messages)
	return messages, nil
}

// Blur marks the field touched and validates it, the on-blur contract.
func (s *Session) Blur(name string) ([]string, error) {
	s.touched[name] = true
	return s.ValidateField(name)
}

// SetValue applies a field's reset directives, stores the new value, and
// revalidates the field when it was already touched. Field states are then
// recomputed and newly disabled fields have their values cleared unless they
// opt out.
func (s *Session) SetValue(name string, value any) error {
	sectionIndex, field, err := s.flatFieldLocation(name)
	if err != nil {
		return err
	}

	if field.ResetErrorFields != nil {
		targets, err := s.ResolveResetTargets(field.ResetErrorFields, sectionIndex)
		if err != nil {
			return err
		}
		for _, target := range targets {
			s.errors.SetFlat(target, []string{})
		}
	}
	if field.ResetValueFields != nil {
		targets, err := s.ResolveResetTargets(field.ResetValueFields, sectionIndex)
		if err != nil {
			return err
		}
		for _, target := range targets {
			s.values[target] = ""
		}
	}

	s.values[name] = value
	if s.touched[name] {
		if _, err := s.ValidateField(name); err != nil {
			return err
		}
	}
	s.applyDisableClears()
	return nil
}

// SetRowValue stores a value inside one row of a repeatable section and,
// when the field was touched, revalidates only that row.
func (s *Session) SetRowValue(arrayName string, row int, name string, value any) error {
	rows, err := s.rows(arrayName)
	if err != nil {
		return err
	}
	if _, ok := s.engine.form.SectionByArray(arrayName); !ok {
		return structuralf("no repeatable section named %q", arrayName)
	}
	if row < 0 || row >= len(rows) {
		return structuralf("row %d out of range for array %q (%d rows)", row, arrayName, len(rows))
	}

	rows[row][name] = value
	s.values[arrayName] = rows
	if s.touched[name] {
		if _, err := s.ValidateRowField(arrayName, row, name); err != nil {
			return err
		}
	}
	return nil
}

// AppendRow adds a row to a repeatable section, seeded empty.
func (s *Session) AppendRow(arrayName string) error {
	section, ok := s.engine.form.SectionByArray(arrayName)
	if !ok {
		return structuralf("no repeatable section named %q", arrayName)
	}
	rows, err := s.rows(arrayName)
	if err != nil {
		return err
	}
	if section.MaxItems > 0 && len(rows) >= section.MaxItems {
		return structuralf("array %q already holds the maximum of %d rows", arrayName, section.MaxItems)
	}
	s.values[arrayName] = append(rows, emptyRow(section))
	return nil
}

// RemoveRow drops a row and its errors, keeping remaining rows aligned.
func (s *Session) RemoveRow(arrayName string, row int) error {
	section, ok := s.engine.form.SectionByArray(arrayName)
	if !ok {
		return structuralf("no repeatable section named %q", arrayName)
	}
	rows, err := s.rows(arrayName)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(rows) {
		return structuralf("row %d out of range for array %q (%d rows)", row, arrayName, len(rows))
	}
	if section.MinItems > 0 && len(rows) <= section.MinItems {
		return structuralf("array %q requires at least %d rows", arrayName, section.MinItems)
	}

	s.values[arrayName] = append(rows[:row:row], rows[row+1:]...)
	existing := s.errors.Rows(arrayName)
	if row < len(existing) {
		s.errors.ReplaceRows(arrayName, append(existing[:row:row], existing[row+1:]...))
	}
	return nil
}

// ClearAll wipes values, errors, and the touched set, then reseeds the
// schema defaults.
func (s *Session) ClearAll() {
	fresh := s.engine.NewSession(nil)
	s.values = fresh.values
	s.errors = fresh.errors
	s.touched = fresh.touched
}

// ClearSection blanks the values, errors, and touched flags of one flat
// section, leaving the rest of the form alone.
func (s *Session) ClearSection(index int) error {
	if index < 0 || index >= len(s.engine.form.Sections) {
		return structuralf("section index %d out of range", index)
	}
	section := &s.engine.form.Sections[index]
	if section.IsArray {
		s.values[section.ArrayName] = []map[string]any{emptyRow(section)}
		s.errors.ReplaceRows(section.ArrayName, make([]RowErrors, 1))
		return nil
	}
	for i := range section.Fields {
		name := section.Fields[i].Name
		s.values[name] = ""
		s.errors.SetFlat(name, []string{})
		s.touched[name] = false
	}
	return nil
}

// flatFieldLocation finds a flat field and the index of its section.
func (s *Session) flatFieldLocation(name string) (int, *schema.Field, error) {
	for i := range s.engine.form.Sections {
		section := &s.engine.form.Sections[i]
		if section.IsArray {
			continue
		}
		if field, ok := section.Field(name); ok {
			return i, field, nil
		}
	}
	return 0, nil, structuralf("unknown field %q", name)
}

// rows reads the array bucket out of the snapshot, normalising the untyped
// shapes a JSON decoder produces. A missing key is an empty array; any other
// shape is a structural mismatch.
func (s *Session) rows(arrayName string) ([]map[string]any, error) {
	raw, ok := s.values[arrayName]
	if !ok || raw == nil {
		return nil, nil
	}
	switch typed := raw.(type) {
	case []map[string]any:
		return typed, nil
	case []any:
		rows := make([]map[string]any, 0, len(typed))
		for i, item := range typed {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, structuralf("array %q row %d is not an object", arrayName, i)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, structuralf("snapshot key %q is not an array of rows", arrayName)
	}
}

// rowSnapshot overlays a row's fields on the whole-form snapshot: the row
// wins for its own fields, while cross-field rules can still reach
// whole-form values.
func (s *Session) rowSnapshot(row map[string]any) map[string]any {
	merged := make(map[string]any, len(s.values)+len(row))
	for key, value := range s.values {
		merged[key] = value
	}
	for key, value := range row {
		merged[key] = value
	}
	return merged
}

// IsRequired resolves whether a flat field is currently mandatory.
func (s *Session) IsRequired(name string) bool {
	field, ok := s.engine.form.FlatFieldByName(name)
	if !ok {
		return false
	}
	return s.engine.validator.IsRequired(field, s.values)
}

func (s *Session) isFalsy(value any) bool {
	return s.engine.ops.Apply(condition.OpIsFalsy, value, nil)
}
