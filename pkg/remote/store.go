package remote

import (
	"sync"

	"github.com/goliatone/go-formrules/pkg/schema"
)

// Store caches fetched option lists per field and guards against responses
// landing out of order: every Begin hands out a monotonically increasing
// token, and only a Publish carrying the latest token for its field is
// applied. A dependency change mid-flight therefore can never clobber the
// options of the newer request.
type Store struct {
	mu      sync.Mutex
	tokens  map[string]uint64
	options map[string][]schema.Option
}

// NewStore returns an empty option store.
func NewStore() *Store {
	return &Store{
		tokens:  make(map[string]uint64),
		options: make(map[string][]schema.Option),
	}
}

// Begin registers a new in-flight fetch for the field and returns its token.
func (s *Store) Begin(field string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[field]++
	return s.tokens[field]
}

// Publish stores the options when token is still the latest issued for the
// field, reporting whether the result was applied.
func (s *Store) Publish(field string, token uint64, options []schema.Option) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.tokens[field] {
		return false
	}
	s.options[field] = options
	return true
}

// Options returns the last published list for the field.
func (s *Store) Options(field string) []schema.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options[field]
}

// Invalidate drops the field's cached options and bumps its token so any
// in-flight response is discarded.
func (s *Store) Invalidate(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[field]++
	delete(s.options, field)
}
