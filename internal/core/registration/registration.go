// Package registration builds the descriptors a host framework reads at its
// own bootstrap: registration records, injection lists, directive
// definitions and event bindings. Nothing here resolves dependencies or
// calls the framework.
package registration

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/conduit-lang/harmony/internal/core/condition"
)

// Kind is what a type is registered as
type Kind string

const (
	KindController Kind = "controller"
	KindService    Kind = "service"
	KindComponent  Kind = "component"
)

// Framework structure names
const (
	KeyRegister   = "$register"
	KeyInject     = "$inject"
	KeyCtrlAs     = "CTRL_AS"
	KeyEvents     = "EVENTS"
	KeyListeners  = "LISTENERS"
	KeyModel      = "MODEL"
	KeyMap        = "MAP"
	KeyDebugLevel = "DEBUG_LEVEL"
	KeyDirective  = "directive"
)

// DefaultDebugLevel is recorded when Logging is given no level
const DefaultDebugLevel = "info"

// Params are the parameters of a controller or service registration
type Params struct {
	Module       string
	Name         string
	Deps         []string
	ControllerAs string
}

// Record is the registration of a type in one module
type Record struct {
	Module string `json:"-"`
	Kind   Kind   `json:"type"`
	Name   string `json:"name"`
}

// Binding ties an event to a handler member
type Binding struct {
	Event   string `json:"event"`
	Handler string `json:"handler"`
}

// Builder collects the registration annotations of one type
type Builder struct {
	typeName string
	record   *Record
	deps     []string
	hasDeps  bool
	ctrlAs   string
	comp     *DirectiveParams
	events   []Binding
	listen   []string
	server   string
	model    string
	ajax     map[string]string
	level    string
	errs     error
}

// For starts the registration annotations of a type
func For(typeName string) *Builder {
	b := &Builder{typeName: typeName}
	if typeName == "" {
		b.fail(fmt.Errorf("type name is required"))
	}
	return b
}

func (b *Builder) fail(err error) {
	b.errs = multierr.Append(b.errs, err)
}

func (b *Builder) register(kind Kind, p Params) {
	if p.Module == "" {
		b.fail(fmt.Errorf("%s %s: module is required", kind, b.typeName))
		return
	}
	if b.record != nil {
		b.fail(fmt.Errorf("type %s is already registered as %s", b.typeName, b.record.Kind))
		return
	}
	b.record = &Record{Module: p.Module, Kind: kind, Name: p.Name}
	if p.Deps != nil {
		b.deps = append([]string{}, p.Deps...)
		b.hasDeps = true
	}
}

// Controller registers the type as a controller. The name defaults to the
// type name.
func (b *Builder) Controller(p Params) *Builder {
	if p.Name == "" {
		p.Name = b.typeName
	}
	b.register(KindController, p)
	b.ctrlAs = p.ControllerAs
	return b
}

// Service registers the type as a named service
func (b *Builder) Service(p Params) *Builder {
	if p.Name == "" {
		b.fail(fmt.Errorf("service %s: name is required", b.typeName))
		return b
	}
	b.register(KindService, p)
	return b
}

// Component declares a directive for the type
func (b *Builder) Component(p DirectiveParams) *Builder {
	if p.Module == "" || p.Selector == "" {
		b.fail(fmt.Errorf("component %s: module and selector are required", b.typeName))
		return b
	}
	if b.comp != nil {
		b.fail(fmt.Errorf("component %s declared twice", b.typeName))
		return b
	}
	b.comp = &p
	return b
}

// Evented binds handler to each event, in order. Repeated bindings are
// kept.
func (b *Builder) Evented(handler string, events ...string) *Builder {
	for _, ev := range events {
		b.events = append(b.events, Binding{Event: ev, Handler: handler})
	}
	return b
}

// Listeners sets the listener sequence
func (b *Builder) Listeners(names ...string) *Builder {
	b.listen = append([]string{}, names...)
	return b
}

// IO binds the type as a receptor of server with its client model
func (b *Builder) IO(server, model string) *Builder {
	if server == "" {
		b.fail(fmt.Errorf("io %s: server is required", b.typeName))
		return b
	}
	b.server = server
	b.model = model
	return b
}

// AjaxMap attaches request-map metadata
func (b *Builder) AjaxMap(m map[string]string) *Builder {
	b.ajax = make(map[string]string, len(m))
	for k, v := range m {
		b.ajax[k] = v
	}
	return b
}

// Logging records the debug level, info when level is empty
func (b *Builder) Logging(level string) *Builder {
	if level == "" {
		b.level = DefaultDebugLevel
		return b
	}
	l, err := condition.ParseLevel(level)
	if err != nil {
		b.fail(fmt.Errorf("logging %s: %w", b.typeName, err))
		return b
	}
	b.level = l.String()
	return b
}

// Build produces the immutable descriptor
func (b *Builder) Build() (*Descriptor, error) {
	if b.errs != nil {
		return nil, b.errs
	}

	d := &Descriptor{
		typeName:  b.typeName,
		deps:      append([]string(nil), b.deps...),
		hasDeps:   b.hasDeps,
		ctrlAs:    b.ctrlAs,
		events:    append([]Binding(nil), b.events...),
		listeners: append([]string(nil), b.listen...),
		server:    b.server,
		model:     b.model,
		ajax:      b.ajax,
		level:     b.level,
	}
	if b.record != nil {
		r := *b.record
		d.record = &r
	}
	if b.comp != nil {
		d.directive = newDirective(*b.comp, b.ctrlAs)
	}
	return d, nil
}

// Descriptor is the read-only registration output of one type
type Descriptor struct {
	typeName  string
	record    *Record
	deps      []string
	hasDeps   bool
	ctrlAs    string
	directive *Directive
	events    []Binding
	listeners []string
	server    string
	model     string
	ajax      map[string]string
	level     string
}

// TypeName returns the registered type
func (d *Descriptor) TypeName() string {
	return d.typeName
}

// Record returns the controller or service registration
func (d *Descriptor) Record() (Record, bool) {
	if d.record == nil {
		return Record{}, false
	}
	return *d.record, true
}

// Register returns the $register mapping: module to {type, name}
func (d *Descriptor) Register() map[string]Record {
	if d.record == nil {
		return nil
	}
	return map[string]Record{d.record.Module: *d.record}
}

// Inject returns the dependency list and whether one was given
func (d *Descriptor) Inject() ([]string, bool) {
	return append([]string(nil), d.deps...), d.hasDeps
}

// ControllerAs returns the controller-as alias, empty when none
func (d *Descriptor) ControllerAs() string {
	return d.ctrlAs
}

// Directive returns a copy of the directive definition
func (d *Descriptor) Directive() (Directive, bool) {
	if d.directive == nil {
		return Directive{}, false
	}
	return d.directive.clone(), true
}

// Events returns the event bindings in declaration order
func (d *Descriptor) Events() []Binding {
	return append([]Binding(nil), d.events...)
}

// Listeners returns the listener sequence
func (d *Descriptor) Listeners() []string {
	return append([]string(nil), d.listeners...)
}

// IO returns the receptor server and client model
func (d *Descriptor) IO() (server, model string) {
	return d.server, d.model
}

// AjaxMap returns a copy of the request map
func (d *Descriptor) AjaxMap() map[string]string {
	if d.ajax == nil {
		return nil
	}
	out := make(map[string]string, len(d.ajax))
	for k, v := range d.ajax {
		out[k] = v
	}
	return out
}

// DebugLevel returns the recorded debug level, empty when Logging was not
// used.
func (d *Descriptor) DebugLevel() string {
	return d.level
}

// Structures returns the structures deposited for the framework, keyed by
// the framework's names. Absent annotations are omitted; CTRL_AS is nil
// for controllers without an alias.
func (d *Descriptor) Structures() map[string]any {
	out := make(map[string]any)
	if reg := d.Register(); reg != nil {
		out[KeyRegister] = reg
		if d.record.Kind == KindController {
			if d.ctrlAs != "" {
				out[KeyCtrlAs] = d.ctrlAs
			} else {
				out[KeyCtrlAs] = nil
			}
		}
	}
	if deps, ok := d.Inject(); ok {
		if deps == nil {
			deps = []string{}
		}
		out[KeyInject] = deps
	}
	if d.directive != nil {
		out[KeyDirective] = d.directive.structure()
	}
	if len(d.events) > 0 {
		out[KeyEvents] = d.Events()
	}
	if len(d.listeners) > 0 {
		out[KeyListeners] = d.Listeners()
	}
	if d.server != "" {
		out[KeyModel] = d.model
	}
	if d.ajax != nil {
		out[KeyMap] = d.AjaxMap()
	}
	if d.level != "" {
		out[KeyDebugLevel] = d.level
	}
	return out
}

// MarshalJSON renders the framework structures
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Structures())
}

// sortedKeys returns map keys in order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
