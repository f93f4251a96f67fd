// Package validate implements the per-field rule validator: it walks a
// field's ordered validation entries, applies guard conditions, operator
// rules, custom validators, and cross-field dependency rules, and returns the
// ordered list of failure messages. It also resolves whether a field is
// currently required.
package validate

import (
	"regexp"
	"strings"
	"sync"
)

// CustomValidator is a named pure check. It receives the field's value, the
// options attached to the reference in the schema, and the snapshot the field
// is being validated against. A non-empty return is the failure message; an
// empty return means the value passed.
type CustomValidator func(value any, options any, snapshot map[string]any) string

// Registry holds named custom validators. Registration replaces on name
// collision so late registrations win, matching the operator table.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]CustomValidator
}

// NewRegistry returns a registry preloaded with the built-in validators.
func NewRegistry() *Registry {
	reg := &Registry{fns: make(map[string]CustomValidator, 4)}
	reg.registerBuiltins()
	return reg
}

// Register adds or replaces the validator under name. Empty names and nil
// functions are ignored.
func (r *Registry) Register(name string, fn CustomValidator) {
	if r == nil || fn == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	r.fns[trimmed] = fn
	r.mu.Unlock()
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (CustomValidator, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	fn, ok := r.fns[name]
	r.mu.RUnlock()
	return fn, ok
}

var phonePattern = regexp.MustCompile(`^(\+98|0)?9\d{9}$`)

func (r *Registry) registerBuiltins() {
	r.Register("phoneNumber", func(value any, _ any, _ map[string]any) string {
		raw, _ := value.(string)
		if phonePattern.MatchString(raw) {
			return ""
		}
		return "phone number is not valid"
	})
}
