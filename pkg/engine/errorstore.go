package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved error-store keys for global results.
const (
	FormKey          = "form"
	sectionKeyPrefix = "section."
)

// SectionKey returns the reserved key holding section-level global errors.
func SectionKey(index int) string {
	return fmt.Sprintf("%s%d", sectionKeyPrefix, index)
}

func isReservedKey(key string) bool {
	return key == FormKey || strings.HasPrefix(key, sectionKeyPrefix)
}

// RowErrors maps field name to messages for one row of a repeatable section.
type RowErrors map[string][]string

// BucketKind tags the shape of an error-store entry.
type BucketKind int

const (
	// BucketFlat holds an ordered message list for one field or a reserved
	// key.
	BucketFlat BucketKind = iota
	// BucketRows holds per-row field/message maps for a repeatable section,
	// keyed by the array name.
	BucketRows
)

// Bucket is the tagged per-key value of the error store: flat messages or
// row maps, never both.
type Bucket struct {
	Kind BucketKind
	Flat []string
	Rows []RowErrors
}

func (b Bucket) hasMessages() bool {
	switch b.Kind {
	case BucketFlat:
		return len(b.Flat) > 0
	case BucketRows:
		for _, row := range b.Rows {
			for _, messages := range row {
				if len(messages) > 0 {
					return true
				}
			}
		}
	}
	return false
}

// ErrorStore accumulates validation messages keyed by field name, array
// name, or a reserved global key. Mutations replace whole buckets so a
// reader never observes a half-updated scope.
type ErrorStore struct {
	buckets map[string]Bucket
}

// NewErrorStore returns an empty store.
func NewErrorStore() *ErrorStore {
	return &ErrorStore{buckets: make(map[string]Bucket)}
}

// SetFlat replaces the flat bucket under key.
func (s *ErrorStore) SetFlat(key string, messages []string) {
	s.buckets[key] = Bucket{Kind: BucketFlat, Flat: messages}
}

// Flat returns the messages stored under a flat key.
func (s *ErrorStore) Flat(key string) []string {
	bucket, ok := s.buckets[key]
	if !ok || bucket.Kind != BucketFlat {
		return nil
	}
	return bucket.Flat
}

// ReplaceRows swaps the whole row bucket for an array name, discarding any
// stale rows from a previous, longer array.
func (s *ErrorStore) ReplaceRows(arrayName string, rows []RowErrors) {
	s.buckets[arrayName] = Bucket{Kind: BucketRows, Rows: rows}
}

// SetRowField writes one field's messages inside one row, growing the row
// slice as needed and leaving sibling rows untouched.
func (s *ErrorStore) SetRowField(arrayName string, row int, field string, messages []string) {
	if row < 0 {
		return
	}
	bucket := s.buckets[arrayName]
	bucket.Kind = BucketRows
	bucket.Flat = nil
	for len(bucket.Rows) <= row {
		bucket.Rows = append(bucket.Rows, RowErrors{})
	}
	if bucket.Rows[row] == nil {
		bucket.Rows[row] = RowErrors{}
	}
	bucket.Rows[row][field] = messages
	s.buckets[arrayName] = bucket
}

// Rows returns the row maps stored under an array name.
func (s *ErrorStore) Rows(arrayName string) []RowErrors {
	bucket, ok := s.buckets[arrayName]
	if !ok || bucket.Kind != BucketRows {
		return nil
	}
	return bucket.Rows
}

// Bucket returns the raw tagged bucket under key.
func (s *ErrorStore) Bucket(key string) (Bucket, bool) {
	bucket, ok := s.buckets[key]
	return bucket, ok
}

// Keys lists every tracked key in sorted order.
func (s *ErrorStore) Keys() []string {
	keys := make([]string, 0, len(s.buckets))
	for key := range s.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// BlankNonReserved empties every non-reserved bucket without removing its
// key, so a narrower validation pass does not leave stale messages behind.
func (s *ErrorStore) BlankNonReserved() {
	for key, bucket := range s.buckets {
		if isReservedKey(key) {
			continue
		}
		switch bucket.Kind {
		case BucketFlat:
			s.buckets[key] = Bucket{Kind: BucketFlat}
		case BucketRows:
			s.buckets[key] = Bucket{Kind: BucketRows, Rows: make([]RowErrors, len(bucket.Rows))}
		}
	}
}

// HasMessages reports whether any bucket, reserved keys included, holds at
// least one message.
func (s *ErrorStore) HasMessages() bool {
	for _, bucket := range s.buckets {
		if bucket.hasMessages() {
			return true
		}
	}
	return false
}

// FieldHasMessages reports whether the flat key holds messages.
func (s *ErrorStore) FieldHasMessages(key string) bool {
	bucket, ok := s.buckets[key]
	return ok && bucket.hasMessages()
}

// Clear drops every bucket.
func (s *ErrorStore) Clear() {
	s.buckets = make(map[string]Bucket)
}

// Clone returns a deep copy, useful for comparing before/after states.
func (s *ErrorStore) Clone() *ErrorStore {
	out := NewErrorStore()
	for key, bucket := range s.buckets {
		copied := Bucket{Kind: bucket.Kind}
		if bucket.Flat != nil {
			copied.Flat = append([]string(nil), bucket.Flat...)
		}
		if bucket.Rows != nil {
			copied.Rows = make([]RowErrors, len(bucket.Rows))
			for i, row := range bucket.Rows {
				if row == nil {
					continue
				}
				cloned := make(RowErrors, len(row))
				for field, messages := range row {
					cloned[field] = append([]string(nil), messages...)
				}
				copied.Rows[i] = cloned
			}
		}
		out.buckets[key] = copied
	}
	return out
}
