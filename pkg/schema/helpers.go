package schema

// SectionByID returns the section carrying the given id.
func (f *Form) SectionByID(id string) (*Section, bool) {
	if f == nil || id == "" {
		return nil, false
	}
	for i := range f.Sections {
		if f.Sections[i].ID == id {
			return &f.Sections[i], true
		}
	}
	return nil, false
}

// SectionByArray returns the repeatable section stored under arrayName.
func (f *Form) SectionByArray(arrayName string) (*Section, bool) {
	if f == nil || arrayName == "" {
		return nil, false
	}
	for i := range f.Sections {
		if f.Sections[i].IsArray && f.Sections[i].ArrayName == arrayName {
			return &f.Sections[i], true
		}
	}
	return nil, false
}

// FieldByName searches every section, flat and repeatable, in declaration
// order.
func (f *Form) FieldByName(name string) (*Field, bool) {
	if f == nil || name == "" {
		return nil, false
	}
	for i := range f.Sections {
		if fld, ok := f.Sections[i].Field(name); ok {
			return fld, true
		}
	}
	return nil, false
}

// FlatFieldByName searches only non-repeatable sections; row fields never
// match.
func (f *Form) FlatFieldByName(name string) (*Field, bool) {
	if f == nil || name == "" {
		return nil, false
	}
	for i := range f.Sections {
		if f.Sections[i].IsArray {
			continue
		}
		if fld, ok := f.Sections[i].Field(name); ok {
			return fld, true
		}
	}
	return nil, false
}

// Field returns the named field of this section.
func (s *Section) Field(name string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// FieldNames lists the section's field names in declaration order.
func (s *Section) FieldNames() []string {
	if s == nil || len(s.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Fields))
	for i := range s.Fields {
		names = append(names, s.Fields[i].Name)
	}
	return names
}

// FlatFields iterates every field of every non-repeatable section in
// declaration order.
func (f *Form) FlatFields(fn func(sectionIndex int, field *Field) bool) {
	if f == nil || fn == nil {
		return
	}
	for i := range f.Sections {
		if f.Sections[i].IsArray {
			continue
		}
		for j := range f.Sections[i].Fields {
			if !fn(i, &f.Sections[i].Fields[j]) {
				return
			}
		}
	}
}

// CategoryFields returns names of fields anywhere in the schema whose
// category list contains tag, in declaration order.
func (f *Form) CategoryFields(tag string) []string {
	if f == nil || tag == "" {
		return nil
	}
	var names []string
	for i := range f.Sections {
		for j := range f.Sections[i].Fields {
			field := &f.Sections[i].Fields[j]
			for _, category := range field.Category {
				if category == tag {
					names = append(names, field.Name)
					break
				}
			}
		}
	}
	return names
}
