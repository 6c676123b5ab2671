package accessor

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

// Instance holds the property slots of one value of a registered type.
// Each set is independent; a failed set never rolls back earlier ones.
type Instance struct {
	id        uuid.UUID
	ts        *schema.TypeSchema
	accessors map[string]Accessor
	owner     any

	mu    sync.RWMutex
	slots map[string]any
}

// Option configures an Instance
type Option func(*Instance)

// WithOwner sets the value whose Validate<Property> methods serve as
// pre-validation hooks.
func WithOwner(owner any) Option {
	return func(inst *Instance) {
		inst.owner = owner
	}
}

// WithID sets the instance identifier instead of a random one
func WithID(id uuid.UUID) Option {
	return func(inst *Instance) {
		inst.id = id
	}
}

// WithAccessors reuses accessors compiled for the type
func WithAccessors(accessors map[string]Accessor) Option {
	return func(inst *Instance) {
		inst.accessors = accessors
	}
}

// New creates an empty instance of ts
func New(ts *schema.TypeSchema, opts ...Option) (*Instance, error) {
	if ts == nil {
		return nil, fmt.Errorf("nil type schema")
	}

	inst := &Instance{
		id:    uuid.New(),
		ts:    ts,
		slots: make(map[string]any),
	}
	for _, opt := range opts {
		opt(inst)
	}

	if inst.accessors == nil {
		accessors, err := Compile(ts)
		if err != nil {
			return nil, err
		}
		inst.accessors = accessors
	}
	return inst, nil
}

// ID returns the instance identifier
func (inst *Instance) ID() uuid.UUID {
	return inst.id
}

// Type returns the instance's type schema
func (inst *Instance) Type() *schema.TypeSchema {
	return inst.ts
}

// Owner returns the hook owner, nil when none
func (inst *Instance) Owner() any {
	return inst.owner
}

func (inst *Instance) accessor(property string) (Accessor, error) {
	a, ok := inst.accessors[property]
	if !ok {
		return nil, fmt.Errorf("type %s has no property %s", inst.ts.Name(), property)
	}
	return a, nil
}

// Get reads a property through its accessor
func (inst *Instance) Get(property string) (any, error) {
	a, err := inst.accessor(property)
	if err != nil {
		return nil, err
	}
	return a.Get(inst)
}

// Set writes a property through its accessor
func (inst *Instance) Set(property string, value any) error {
	a, err := inst.accessor(property)
	if err != nil {
		return err
	}
	return a.Set(inst, value)
}

// Append adds item to a unique-list property and reports whether it was
// added.
func (inst *Instance) Append(property string, item any) (bool, error) {
	a, err := inst.accessor(property)
	if err != nil {
		return false, err
	}
	ul, ok := a.(*uniqueList)
	if !ok {
		return false, fmt.Errorf("property %s is not a unique list", describe(inst.ts, property))
	}
	return ul.add(inst, item)
}

// Has reports whether a property slot has been set
func (inst *Instance) Has(property string) bool {
	_, ok := inst.load(property)
	return ok
}

// Invoke calls a member of the type's capability set
func (inst *Instance) Invoke(name string, args ...any) (any, error) {
	return inst.ts.Members().Invoke(name, args...)
}

// Log reports c through the type's log capability, tagged with the
// instance identifier.
func (inst *Instance) Log(c *condition.Condition) error {
	if c == nil {
		return nil
	}
	tagged := *c
	tagged.Instance = inst.id.String()
	_, err := inst.Invoke(schema.LogMember, &tagged)
	return err
}

// Snapshot returns the projected values of every set slot
func (inst *Instance) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, name := range inst.ts.FieldNames() {
		if !inst.Has(name) {
			continue
		}
		v, err := inst.Get(name)
		if err != nil {
			continue
		}
		out[name] = v
	}
	return out
}

// settle decides what a rejected set returns. Suppressible rejections are
// logged once and dropped; type validation failures are logged and
// returned; everything else is returned.
func (inst *Instance) settle(res condition.Result) error {
	c := res.Condition()
	if !res.Fatal() {
		return inst.Log(c)
	}
	if c.Kind == condition.KindTypeValidation {
		if err := inst.Log(c); err != nil {
			return multierr.Append(c, err)
		}
	}
	return c
}

func (inst *Instance) load(property string) (any, bool) {
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	v, ok := inst.slots[property]
	return v, ok
}

func (inst *Instance) store(property string, value any) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.slots[property] = value
}

func (inst *Instance) clear(property string) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	delete(inst.slots, property)
}
