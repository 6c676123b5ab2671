package schema

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/conduit-lang/harmony/internal/core/capability"
)

// Hook is a pre-validation hook. Returning a condition at info or debug
// level abandons the set quietly; any other error is returned to the
// caller.
type Hook func(value any) error

// Mode is how a field stores its value
type Mode int

const (
	// ModeValue stores the raw value behind the property interceptor
	ModeValue Mode = iota
	// ModeDerived stores a transformer and exposes its projection
	ModeDerived
	// ModeUniqueList stores a list that rejects matching items
	ModeUniqueList
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeValue:
		return "value"
	case ModeDerived:
		return "derived"
	case ModeUniqueList:
		return "unique-list"
	default:
		return "unknown"
	}
}

// Field is a declared property of a type
type Field struct {
	Name           string
	Mode           Mode
	Nullable       bool
	NullabilitySet bool
	Contract       *Contract
	PreValidate    Hook
	Transformer    *TransformerConstructor
	Position       int
}

// Validated reports whether setting the field can raise conditions that
// must be logged through the instance.
func (f *Field) Validated() bool {
	return f.Contract != nil || f.PreValidate != nil || f.Mode == ModeDerived
}

type requirement struct {
	iface reflect.Type
	impl  any
}

// Builder declares one type. Declarations are evaluated in order and
// errors accumulate until Registry.Register.
type Builder struct {
	name     string
	fields   []*Field
	index    map[string]*Field
	members  []capability.Member
	sources  []*capability.Bag
	requires []requirement
	parent   *capability.Set
	errs     error
}

// Define starts the declaration of a type
func Define(name string) *Builder {
	b := &Builder{
		name:  name,
		index: make(map[string]*Field),
	}
	if name == "" {
		b.fail(fmt.Errorf("type name is required"))
	}
	return b
}

// Name returns the declared type name
func (b *Builder) Name() string {
	return b.name
}

// Err returns the accumulated declaration errors
func (b *Builder) Err() error {
	return b.errs
}

func (b *Builder) fail(err error) {
	b.errs = multierr.Append(b.errs, err)
}

// Field declares a property. Declaring the same name twice is an error.
func (b *Builder) Field(name string) *FieldBuilder {
	f := &Field{Name: name, Position: len(b.fields)}

	switch {
	case name == "":
		b.fail(fmt.Errorf("type %s: field name is required", b.name))
		return &FieldBuilder{b: b, f: f}
	case b.index[name] != nil:
		b.fail(fmt.Errorf("type %s: field %s declared twice", b.name, name))
		return &FieldBuilder{b: b, f: f}
	}

	b.fields = append(b.fields, f)
	b.index[name] = f
	return &FieldBuilder{b: b, f: f}
}

// Member defines an own member of the type. Own members are never
// replaced by merged capabilities.
func (b *Builder) Member(name string, value any) *Builder {
	b.members = append(b.members, capability.Member{Name: name, Value: value})
	return b
}

// Inherit sets the member set the type inherits from. Inherited members
// resolve but do not block merged capabilities.
func (b *Builder) Inherit(parent *capability.Set) *Builder {
	b.parent = parent
	return b
}

// Mixin composes mixin bags, in order
func (b *Builder) Mixin(bags ...*capability.Bag) *Builder {
	for _, bag := range bags {
		if bag != nil && bag.Kind() != capability.KindMixin {
			b.fail(fmt.Errorf("type %s: %s is not a mixin", b.name, bag.Name()))
			continue
		}
		b.sources = append(b.sources, bag)
	}
	return b
}

// Implements composes interface bags. Members without an implementation
// become NotImplemented stubs.
func (b *Builder) Implements(bags ...*capability.Bag) *Builder {
	for _, bag := range bags {
		if bag != nil && bag.Kind() != capability.KindInterface {
			b.fail(fmt.Errorf("type %s: %s is not an interface", b.name, bag.Name()))
			continue
		}
		b.sources = append(b.sources, bag)
	}
	return b
}

// Requires declares that impl satisfies the Go interface iface. The check
// runs at registration, and impl's methods are composed as a mixin.
func (b *Builder) Requires(iface reflect.Type, impl any) *Builder {
	b.requires = append(b.requires, requirement{iface: iface, impl: impl})
	return b
}

// FieldBuilder configures a declared field
type FieldBuilder struct {
	b *Builder
	f *Field
}

func (fb *FieldBuilder) conflict(format string, args ...any) {
	fb.b.fail(fmt.Errorf("type %s: field %s: %s", fb.b.name, fb.f.Name, fmt.Sprintf(format, args...)))
}

func (fb *FieldBuilder) mode(m Mode) bool {
	if fb.f.Mode != ModeValue && fb.f.Mode != m {
		fb.conflict("cannot be both %s and %s", fb.f.Mode, m)
		return false
	}
	if m != ModeValue && (fb.f.Contract != nil || fb.f.PreValidate != nil) {
		fb.conflict("a %s field cannot have a type contract or pre-validation hook", m)
		return false
	}
	fb.f.Mode = m
	return true
}

// Nullable lets the field hold absence
func (fb *FieldBuilder) Nullable() *FieldBuilder {
	fb.f.Nullable = true
	fb.f.NullabilitySet = true
	return fb
}

// NonNullable rejects absence with VoidError
func (fb *FieldBuilder) NonNullable() *FieldBuilder {
	fb.f.Nullable = false
	fb.f.NullabilitySet = true
	return fb
}

// OfType sets the type contract
func (fb *FieldBuilder) OfType(c *Contract) *FieldBuilder {
	if c == nil {
		fb.conflict("nil type contract")
		return fb
	}
	if fb.f.Mode != ModeValue {
		fb.conflict("a %s field cannot have a type contract", fb.f.Mode)
		return fb
	}
	fb.f.Contract = c
	return fb
}

// OfKind sets the built-in contract of a kind
func (fb *FieldBuilder) OfKind(k Kind) *FieldBuilder {
	c, err := OfKind(k)
	if err != nil {
		fb.conflict("%v", err)
		return fb
	}
	return fb.OfType(c)
}

// OfConstructor sets a contract built by fn
func (fb *FieldBuilder) OfConstructor(name string, fn any) *FieldBuilder {
	c, err := Constructed(name, fn)
	if err != nil {
		fb.conflict("%v", err)
		return fb
	}
	return fb.OfType(c)
}

// PreValidate sets an explicit pre-validation hook. Without one, the
// instance owner's Validate<Property> method is used when present.
func (fb *FieldBuilder) PreValidate(h Hook) *FieldBuilder {
	if fb.f.Mode != ModeValue {
		fb.conflict("a %s field cannot have a pre-validation hook", fb.f.Mode)
		return fb
	}
	fb.f.PreValidate = h
	return fb
}

// Derived stores the field through a transformer built by fn. fn's result
// must implement Transformer.
func (fb *FieldBuilder) Derived(fn any) *FieldBuilder {
	tc, err := ParseTransformer(fn)
	if err != nil {
		fb.conflict("derived: %v", err)
		return fb
	}
	if fb.mode(ModeDerived) {
		fb.f.Transformer = tc
	}
	return fb
}

// UniqueList backs the field with a list that skips matching items
func (fb *FieldBuilder) UniqueList() *FieldBuilder {
	fb.mode(ModeUniqueList)
	return fb
}

// Field declares the next property
func (fb *FieldBuilder) Field(name string) *FieldBuilder {
	return fb.b.Field(name)
}

// Done returns the type builder
func (fb *FieldBuilder) Done() *Builder {
	return fb.b
}
