// Package capability composes partial implementations onto a type's member
// set. Mixin bags contribute concrete members; interface bags contribute
// stubs that fail with a NotImplemented condition until overridden.
package capability

// Func is the calling convention of dynamic members.
type Func func(args ...any) (any, error)

// Accessor is a member with get/set behavior. It is copied verbatim by the
// merger, so every target shares the same accessor functions.
type Accessor struct {
	Get func() (any, error)
	Set func(value any) error
}

// Member is a named value contributed by a bag.
type Member struct {
	Name  string
	Value any
}

// Kind distinguishes concrete mixins from contract-only interfaces
type Kind int

const (
	KindMixin Kind = iota
	KindInterface
)

// String returns the string representation of the bag kind
func (k Kind) String() string {
	switch k {
	case KindMixin:
		return "mixin"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Bag is a named, ordered set of members. Bags are never modified by Merge.
type Bag struct {
	name    string
	kind    Kind
	members []Member
	index   map[string]int
}

// NewMixin creates a bag whose members are copied onto targets as-is.
// A name declared twice keeps its first position and its last value.
func NewMixin(name string, members ...Member) *Bag {
	b := &Bag{
		name:  name,
		kind:  KindMixin,
		index: make(map[string]int, len(members)),
	}
	for _, m := range members {
		b.add(m)
	}
	return b
}

// NewInterface creates a contract-only bag naming the required members.
func NewInterface(name string, methods ...string) *Bag {
	b := &Bag{
		name:  name,
		kind:  KindInterface,
		index: make(map[string]int, len(methods)),
	}
	for _, m := range methods {
		b.add(Member{Name: m})
	}
	return b
}

func (b *Bag) add(m Member) {
	if i, ok := b.index[m.Name]; ok {
		b.members[i] = m
		return
	}
	b.index[m.Name] = len(b.members)
	b.members = append(b.members, m)
}

// Name returns the bag name
func (b *Bag) Name() string {
	return b.name
}

// Kind returns whether the bag is a mixin or an interface
func (b *Bag) Kind() Kind {
	return b.kind
}

// Names returns member names in declaration order
func (b *Bag) Names() []string {
	names := make([]string, len(b.members))
	for i, m := range b.members {
		names[i] = m.Name
	}
	return names
}

// Member returns a member by name
func (b *Bag) Member(name string) (Member, bool) {
	i, ok := b.index[name]
	if !ok {
		return Member{}, false
	}
	return b.members[i], true
}

// Members returns a copy of the members in declaration order
func (b *Bag) Members() []Member {
	out := make([]Member, len(b.members))
	copy(out, b.members)
	return out
}

// Len returns the number of members
func (b *Bag) Len() int {
	return len(b.members)
}
