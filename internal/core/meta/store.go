// Package meta provides the annotation store that schema declarations write
// into and accessors read from at run time.
package meta

import (
	"fmt"
	"sort"
	"sync"
)

// Key names an annotation attached to a subject.
type Key string

const (
	// KeyNullable marks a property that may hold absence (bool).
	KeyNullable Key = "nullable"
	// KeyTypeContract holds the contracted type of a property.
	KeyTypeContract Key = "type-contract"
	// KeyTransformer holds the transformer constructor of a derived property.
	KeyTransformer Key = "transformer"
	// KeyPreValidate holds an explicit pre-validation hook.
	KeyPreValidate Key = "pre-validate"
	// KeyUniqueList marks a property backed by a unique list.
	KeyUniqueList Key = "unique-list"
	// KeyFields holds the declared property names of a type, in order.
	KeyFields Key = "fields"
)

// Subject addresses a type, or a property of a type when Property is set.
type Subject struct {
	Type     string
	Property string
}

// TypeSubject addresses a type itself
func TypeSubject(typeName string) Subject {
	return Subject{Type: typeName}
}

// PropertySubject addresses a property of a type
func PropertySubject(typeName, property string) Subject {
	return Subject{Type: typeName, Property: property}
}

// String returns "Type" or "Type.property"
func (s Subject) String() string {
	if s.Property == "" {
		return s.Type
	}
	return fmt.Sprintf("%s.%s", s.Type, s.Property)
}

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent is returned by Get when no value is stored for a (subject, key).
var Absent any = absent{}

// Store holds at most one value per (subject, key). Writes happen while
// types are being defined; afterwards the store is only read.
type Store struct {
	mu      sync.RWMutex
	entries map[Subject]map[Key]any
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[Subject]map[Key]any),
	}
}

// Define stores value for (subject, key), replacing any earlier value.
func (s *Store) Define(subject Subject, key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.entries[subject]
	if !ok {
		keys = make(map[Key]any)
		s.entries[subject] = keys
	}
	keys[key] = value
}

// Has reports whether a value is stored for (subject, key)
func (s *Store) Has(subject Subject, key Key) bool {
	_, ok := s.Lookup(subject, key)
	return ok
}

// Get returns the stored value or Absent
func (s *Store) Get(subject Subject, key Key) any {
	if v, ok := s.Lookup(subject, key); ok {
		return v
	}
	return Absent
}

// Lookup returns the stored value and whether it exists
func (s *Store) Lookup(subject Subject, key Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[subject][key]
	return v, ok
}

// Flag returns a boolean annotation, false when absent or not a bool.
func (s *Store) Flag(subject Subject, key Key) bool {
	v, ok := s.Lookup(subject, key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Keys returns the keys stored for a subject, sorted
func (s *Store) Keys(subject Subject) []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.entries[subject]))
	for k := range s.entries[subject] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Subjects returns every annotated subject sorted by type then property.
func (s *Store) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects := make([]Subject, 0, len(s.entries))
	for subject := range s.entries {
		subjects = append(subjects, subject)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Type != subjects[j].Type {
			return subjects[i].Type < subjects[j].Type
		}
		return subjects[i].Property < subjects[j].Property
	})
	return subjects
}

// Forget removes every annotation of a type and its properties.
func (s *Store) Forget(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject := range s.entries {
		if subject.Type == typeName {
			delete(s.entries, subject)
		}
	}
}

// Len returns the number of annotated subjects
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset clears the store (used for testing).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Subject]map[Key]any)
}
