package engine

// validateGlobals evaluates the form-level global entries and stores their
// messages under the reserved "form" key. A global entry either carries
// custom validators (the guard gates them, the whole snapshot is the value),
// or describes a bad state directly: its condition holding contributes the
// entry's message.
func (s *Session) validateGlobals() bool {
	var messages []string
	for i := range s.engine.form.GlobalValidations {
		entry := &s.engine.form.GlobalValidations[i]

		if len(entry.Custom) > 0 {
			if entry.When != nil && !s.engine.eval.Evaluate(entry.When, s.values) {
				continue
			}
			for j := range entry.Custom {
				ref := &entry.Custom[j]
				fn, ok := s.engine.customs.Lookup(ref.Validator)
				if !ok {
					continue
				}
				if result := fn(s.values, ref.Options, s.values); result != "" {
					if ref.Message != "" {
						messages = append(messages, ref.Message)
					} else {
						messages = append(messages, result)
					}
				}
			}
			continue
		}

		if entry.When != nil && s.engine.eval.Evaluate(entry.When, s.values) && entry.Message != "" {
			messages = append(messages, entry.Message)
		}
	}
	s.errors.SetFlat(FormKey, messages)
	return len(messages) == 0
}

// updateSectionDigests records at most one message per section under the
// reserved "section.<i>" keys: the first failing section-level global entry,
// or, failing that, the first field error inside the section. Runs after
// field validation so the digests reflect the fresh results.
func (s *Session) updateSectionDigests() bool {
	clean := true
	for i := range s.engine.form.Sections {
		section := &s.engine.form.Sections[i]
		message := ""

		for j := range section.GlobalValidations {
			entry := &section.GlobalValidations[j]
			if entry.When != nil && s.engine.eval.Evaluate(entry.When, s.values) && entry.Message != "" {
				message = entry.Message
				break
			}
		}

		if message == "" {
			if section.IsArray {
				for _, row := range s.errors.Rows(section.ArrayName) {
					for _, name := range section.FieldNames() {
						if msgs := row[name]; len(msgs) > 0 {
							message = msgs[0]
							break
						}
					}
					if message != "" {
						break
					}
				}
			} else {
				for _, name := range section.FieldNames() {
					if msgs := s.errors.Flat(name); len(msgs) > 0 {
						message = msgs[0]
						break
					}
				}
			}
		}

		if message == "" {
			s.errors.SetFlat(SectionKey(i), []string{})
		} else {
			s.errors.SetFlat(SectionKey(i), []string{message})
			clean = false
		}
	}
	return clean
}
