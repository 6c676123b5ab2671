package capability

import (
	"fmt"

	"github.com/conduit-lang/harmony/internal/core/condition"
)

// Set is the member set of a type. Members found through the parent chain
// are inherited: they resolve on lookup but never count as own members.
type Set struct {
	parent *Set
	own    map[string]any
	stubs  map[string]bool
	order  []string
}

// NewSet creates an empty member set inheriting from parent (may be nil)
func NewSet(parent *Set) *Set {
	return &Set{
		parent: parent,
		own:    make(map[string]any),
		stubs:  make(map[string]bool),
	}
}

// Define installs an own member, replacing any existing own member.
func (s *Set) Define(name string, value any) {
	if _, exists := s.own[name]; !exists {
		s.order = append(s.order, name)
	}
	s.own[name] = value
	delete(s.stubs, name)
}

func (s *Set) defineStub(name string) {
	s.Define(name, Stub(name))
	s.stubs[name] = true
}

// IsStub reports whether name resolves to a NotImplemented stub.
func (s *Set) IsStub(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.own[name]; ok {
			return cur.stubs[name]
		}
	}
	return false
}

// HasOwn reports whether name is defined directly on this set
func (s *Set) HasOwn(name string) bool {
	_, ok := s.own[name]
	return ok
}

// Lookup resolves a member on this set, then along the parent chain.
func (s *Set) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.own[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names returns own member names in installation order
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Parent returns the inherited set, nil at the root
func (s *Set) Parent() *Set {
	return s.parent
}

// Invoke calls a member. Func members receive args as-is; an Accessor is
// read with no args and written with one. A missing member is reported as
// NotImplemented.
func (s *Set) Invoke(name string, args ...any) (any, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, condition.NotImplemented(name)
	}

	switch m := v.(type) {
	case Func:
		return m(args...)
	case func(args ...any) (any, error):
		return m(args...)
	case Accessor:
		switch len(args) {
		case 0:
			if m.Get == nil {
				return nil, condition.NotImplemented(name)
			}
			return m.Get()
		case 1:
			if m.Set == nil {
				return nil, condition.NotImplemented(name)
			}
			return nil, m.Set(args[0])
		default:
			return nil, fmt.Errorf("accessor %s takes at most one argument, got %d", name, len(args))
		}
	default:
		return nil, fmt.Errorf("member %s is not callable (%T)", name, v)
	}
}
