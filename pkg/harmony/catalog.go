package harmony

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/conduit-lang/harmony/internal/core/accessor"
	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/logging"
	"github.com/conduit-lang/harmony/internal/core/registration"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

// Catalog owns a schema registry, its registration table and the
// accessors compiled for each type.
type Catalog struct {
	registry   *schema.Registry
	table      *registration.Table
	accessors  map[string]map[string]accessor.Accessor
	logger     *zap.Logger
	condLogger logging.Logger
	mu         sync.RWMutex
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLogger sets the zap logger for definition events and, unless
// WithConditionLogger is given, for conditions raised by instances.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConditionLogger sets the logger behind every type's log capability
func WithConditionLogger(l logging.Logger) Option {
	return func(c *Catalog) {
		c.condLogger = l
	}
}

// NewCatalog creates an empty catalog
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		table:     registration.NewTable(),
		accessors: make(map[string]map[string]accessor.Accessor),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.condLogger == nil {
		c.condLogger = logging.Wrap(c.logger)
	}
	c.registry = schema.NewRegistry(schema.WithLogger(c.logger))
	return c
}

// Load registers each definition. Every type receives the logging
// capability; a failing definition does not stop the others, and all
// failures are returned together.
func (c *Catalog) Load(defs ...*Definition) error {
	var errs error
	for _, def := range defs {
		errs = multierr.Append(errs, c.load(def))
	}
	return errs
}

func (c *Catalog) load(def *Definition) error {
	if def == nil {
		return fmt.Errorf("nil definition")
	}

	desc, err := def.reg.Build()
	if err != nil {
		return fmt.Errorf("registration %s: %w", def.name, err)
	}

	ts, err := c.registry.Register(def.schema, logging.Mixin(c.typeLogger(def)))
	if err != nil {
		return err
	}

	accessors, err := accessor.Compile(ts)
	if err != nil {
		return err
	}
	if err := c.table.Add(desc); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessors[ts.Name()] = accessors
	c.mu.Unlock()
	return nil
}

func (c *Catalog) typeLogger(def *Definition) logging.Logger {
	if def.level == "" {
		return c.condLogger
	}
	zl, ok := c.condLogger.(*logging.ZapLogger)
	if !ok {
		return c.condLogger
	}
	level, err := condition.ParseLevel(def.level)
	if err != nil {
		return c.condLogger
	}
	return zl.AtLeast(level)
}

// Type returns the schema of a loaded type
func (c *Catalog) Type(name string) (*schema.TypeSchema, bool) {
	return c.registry.Get(name)
}

// Types returns the loaded type names, sorted
func (c *Catalog) Types() []string {
	return c.registry.List()
}

// Registry returns the schema registry
func (c *Catalog) Registry() *schema.Registry {
	return c.registry
}

// Registrations returns the registration table
func (c *Catalog) Registrations() *registration.Table {
	return c.table
}

// New creates an instance of a loaded type
func (c *Catalog) New(name string, opts ...InstanceOption) (*Instance, error) {
	ts, ok := c.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("type %s is not loaded", name)
	}

	c.mu.RLock()
	accessors := c.accessors[name]
	c.mu.RUnlock()

	opts = append([]InstanceOption{accessor.WithAccessors(accessors)}, opts...)
	return accessor.New(ts, opts...)
}
