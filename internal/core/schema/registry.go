package schema

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/conduit-lang/harmony/internal/core/capability"
	"github.com/conduit-lang/harmony/internal/core/meta"
)

// LogMember is the capability every type with validated fields must expose
const LogMember = "log"

// Registry owns the schemas of a set of types and the metadata store their
// declarations write into.
type Registry struct {
	schemas map[string]*TypeSchema
	store   *meta.Store
	logger  *zap.Logger
	mu      sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for definition events
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStore shares an existing metadata store
func WithStore(store *meta.Store) Option {
	return func(r *Registry) {
		if store != nil {
			r.store = store
		}
	}
}

// NewRegistry creates a new schema registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		schemas: make(map[string]*TypeSchema),
		store:   meta.NewStore(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register evaluates a declaration: it validates the definition, merges
// capabilities and writes the metadata entries. Every problem found is
// reported in the returned error; nothing is written when it is non-nil.
// Extra bags are merged after the builder's mixins and leave b unchanged.
func (r *Registry) Register(b *Builder, extra ...*capability.Bag) (*TypeSchema, error) {
	if b == nil {
		return nil, fmt.Errorf("nil schema builder")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	errs := b.errs
	if _, exists := r.schemas[b.name]; exists {
		errs = multierr.Append(errs, fmt.Errorf("type %s is already registered", b.name))
	}

	sources := make([]*capability.Bag, 0, len(b.sources)+len(extra)+len(b.requires))
	sources = append(sources, b.sources...)
	sources = append(sources, extra...)
	for _, req := range b.requires {
		if err := capability.Verify(req.iface, req.impl); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("type %s: %v: %w", b.name, req.iface, err))
			continue
		}
		bag, err := capability.MixinOf(req.iface.Name(), req.impl)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("type %s: %w", b.name, err))
			continue
		}
		sources = append(sources, bag)
	}

	members := capability.NewSet(b.parent)
	for _, m := range b.members {
		members.Define(m.Name, m.Value)
	}
	capability.Merge(members, sources...)

	if needsLog(b.fields) {
		if _, ok := members.Lookup(LogMember); !ok {
			errs = multierr.Append(errs, fmt.Errorf("type %s has validated fields but no %s capability", b.name, LogMember))
		}
	}

	if errs != nil {
		r.logger.Debug("type rejected",
			zap.String("type", b.name),
			zap.Int("errors", len(multierr.Errors(errs))),
		)
		return nil, fmt.Errorf("schema %s: %w", b.name, errs)
	}

	ts := &TypeSchema{
		name:    b.name,
		fields:  append([]*Field(nil), b.fields...),
		index:   make(map[string]*Field, len(b.fields)),
		members: members,
		store:   r.store,
	}
	for _, f := range ts.fields {
		ts.index[f.Name] = f
		r.annotate(b.name, f)
	}
	r.store.Define(meta.TypeSubject(b.name), meta.KeyFields, ts.FieldNames())
	r.schemas[b.name] = ts

	r.logger.Debug("type registered",
		zap.String("type", b.name),
		zap.Int("fields", len(ts.fields)),
		zap.Strings("members", members.Names()),
	)
	return ts, nil
}

func needsLog(fields []*Field) bool {
	for _, f := range fields {
		if f.Validated() {
			return true
		}
	}
	return false
}

// annotate writes the metadata entries of one field
func (r *Registry) annotate(typeName string, f *Field) {
	subject := meta.PropertySubject(typeName, f.Name)

	if f.NullabilitySet {
		r.store.Define(subject, meta.KeyNullable, f.Nullable)
	}
	if f.Contract != nil {
		r.store.Define(subject, meta.KeyTypeContract, f.Contract)
	}
	if f.PreValidate != nil {
		r.store.Define(subject, meta.KeyPreValidate, f.PreValidate)
	}
	switch f.Mode {
	case ModeDerived:
		r.store.Define(subject, meta.KeyTransformer, f.Transformer)
	case ModeUniqueList:
		r.store.Define(subject, meta.KeyUniqueList, true)
	}
}

// Get retrieves a type schema by name
func (r *Registry) Get(name string) (*TypeSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ts, exists := r.schemas[name]
	return ts, exists
}

// MustGet retrieves a type schema or panics
func (r *Registry) MustGet(name string) *TypeSchema {
	ts, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("type %s not registered", name))
	}
	return ts
}

// Exists checks if a type schema exists
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the registered type names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered schemas
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Store returns the metadata store owned by the registry
func (r *Registry) Store() *meta.Store {
	return r.store
}

// Clear removes all registered schemas and their annotations (useful for
// testing).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range r.schemas {
		r.store.Forget(name)
	}
	r.schemas = make(map[string]*TypeSchema)
}

// RegistryStats summarizes the registered schemas
type RegistryStats struct {
	TotalTypes       int
	TotalFields      int
	ContractedFields int
	DerivedFields    int
	UniqueLists      int
	NullableFields   int
	TotalMembers     int
	StubbedMembers   int
	Annotations      int
}

// Stats returns statistics about the registry
func (r *Registry) Stats() *RegistryStats {
	r.mu.RLock()
	snapshot := make([]*TypeSchema, 0, len(r.schemas))
	for _, ts := range r.schemas {
		snapshot = append(snapshot, ts)
	}
	r.mu.RUnlock()

	stats := &RegistryStats{TotalTypes: len(snapshot)}
	for _, ts := range snapshot {
		stats.TotalFields += len(ts.fields)
		for _, f := range ts.fields {
			if f.Contract != nil {
				stats.ContractedFields++
			}
			if f.Nullable {
				stats.NullableFields++
			}
			switch f.Mode {
			case ModeDerived:
				stats.DerivedFields++
			case ModeUniqueList:
				stats.UniqueLists++
			}
		}
		for _, name := range ts.members.Names() {
			stats.TotalMembers++
			if ts.members.IsStub(name) {
				stats.StubbedMembers++
			}
		}
	}
	for _, subject := range r.store.Subjects() {
		stats.Annotations += len(r.store.Keys(subject))
	}
	return stats
}
