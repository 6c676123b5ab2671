// Package harmony is the public entry point: declare types with Define,
// load them into a Catalog and create validated instances.
package harmony

import (
	"reflect"

	"github.com/conduit-lang/harmony/internal/core/accessor"
	"github.com/conduit-lang/harmony/internal/core/capability"
	"github.com/conduit-lang/harmony/internal/core/registration"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

type (
	Instance        = accessor.Instance
	InstanceOption  = accessor.Option
	Params          = registration.Params
	DirectiveParams = registration.DirectiveParams
	FieldBuilder    = schema.FieldBuilder
)

var (
	WithOwner = accessor.WithOwner
	WithID    = accessor.WithID
)

// Definition pairs the schema declaration of a type with its registration
// annotations.
type Definition struct {
	name   string
	schema *schema.Builder
	reg    *registration.Builder
	level  string
}

// Define starts a type definition
func Define(name string) *Definition {
	return &Definition{
		name:   name,
		schema: schema.Define(name),
		reg:    registration.For(name),
	}
}

// Name returns the type name
func (d *Definition) Name() string {
	return d.name
}

// Schema returns the underlying schema builder
func (d *Definition) Schema() *schema.Builder {
	return d.schema
}

// Field declares a property
func (d *Definition) Field(name string) *FieldBuilder {
	return d.schema.Field(name)
}

// Member defines an own member
func (d *Definition) Member(name string, value any) *Definition {
	d.schema.Member(name, value)
	return d
}

// Mixin composes mixin bags
func (d *Definition) Mixin(bags ...*capability.Bag) *Definition {
	d.schema.Mixin(bags...)
	return d
}

// Implements composes interface bags
func (d *Definition) Implements(bags ...*capability.Bag) *Definition {
	d.schema.Implements(bags...)
	return d
}

// Requires declares that impl satisfies iface
func (d *Definition) Requires(iface reflect.Type, impl any) *Definition {
	d.schema.Requires(iface, impl)
	return d
}

// Controller registers the type as a controller
func (d *Definition) Controller(p Params) *Definition {
	d.reg.Controller(p)
	return d
}

// Service registers the type as a service
func (d *Definition) Service(p Params) *Definition {
	d.reg.Service(p)
	return d
}

// Component declares a directive for the type
func (d *Definition) Component(p DirectiveParams) *Definition {
	d.reg.Component(p)
	return d
}

// On binds handler to events
func (d *Definition) On(handler string, events ...string) *Definition {
	d.reg.Evented(handler, events...)
	return d
}

// Listeners sets the listener sequence
func (d *Definition) Listeners(names ...string) *Definition {
	d.reg.Listeners(names...)
	return d
}

// IO binds the type as a receptor of server
func (d *Definition) IO(server, model string) *Definition {
	d.reg.IO(server, model)
	return d
}

// AjaxMap attaches request-map metadata
func (d *Definition) AjaxMap(m map[string]string) *Definition {
	d.reg.AjaxMap(m)
	return d
}

// Logging records the type's debug level. Conditions logged by its
// instances below that level are dropped.
func (d *Definition) Logging(level string) *Definition {
	d.reg.Logging(level)
	if level == "" {
		level = registration.DefaultDebugLevel
	}
	d.level = level
	return d
}
