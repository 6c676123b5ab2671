package schema

import (
	"github.com/conduit-lang/harmony/internal/core/capability"
	"github.com/conduit-lang/harmony/internal/core/meta"
)

// TypeSchema is the registered, read-only view of a type. Property
// behavior is answered from the metadata store.
type TypeSchema struct {
	name    string
	fields  []*Field
	index   map[string]*Field
	members *capability.Set
	store   *meta.Store
}

// Name returns the type name
func (ts *TypeSchema) Name() string {
	return ts.name
}

// Fields returns the declared fields in declaration order
func (ts *TypeSchema) Fields() []*Field {
	out := make([]*Field, len(ts.fields))
	copy(out, ts.fields)
	return out
}

// FieldNames returns the declared field names in declaration order
func (ts *TypeSchema) FieldNames() []string {
	names := make([]string, len(ts.fields))
	for i, f := range ts.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns a declared field
func (ts *TypeSchema) Field(name string) (*Field, bool) {
	f, ok := ts.index[name]
	return f, ok
}

// Members returns the composed member set
func (ts *TypeSchema) Members() *capability.Set {
	return ts.members
}

// Store returns the metadata store the type was annotated in
func (ts *TypeSchema) Store() *meta.Store {
	return ts.store
}

func (ts *TypeSchema) subject(property string) meta.Subject {
	return meta.PropertySubject(ts.name, property)
}

// Nullable reports whether property may hold absence
func (ts *TypeSchema) Nullable(property string) bool {
	return ts.store.Flag(ts.subject(property), meta.KeyNullable)
}

// Contract returns the type contract of property, nil when none
func (ts *TypeSchema) Contract(property string) *Contract {
	c, _ := ts.store.Get(ts.subject(property), meta.KeyTypeContract).(*Contract)
	return c
}

// Hook returns the explicit pre-validation hook of property, nil when none
func (ts *TypeSchema) Hook(property string) Hook {
	h, _ := ts.store.Get(ts.subject(property), meta.KeyPreValidate).(Hook)
	return h
}

// Transformer returns the transformer constructor of a derived property
func (ts *TypeSchema) Transformer(property string) *TransformerConstructor {
	tc, _ := ts.store.Get(ts.subject(property), meta.KeyTransformer).(*TransformerConstructor)
	return tc
}

// UniqueList reports whether property is backed by a unique list
func (ts *TypeSchema) UniqueList(property string) bool {
	return ts.store.Flag(ts.subject(property), meta.KeyUniqueList)
}
