package accessor

import (
	"fmt"

	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

// derived keeps a transformer in the slot and exposes its projection
type derived struct {
	ts       *schema.TypeSchema
	property string
	ctor     *schema.TransformerConstructor
}

// Derive builds the accessor of a derived property. A nil ctor uses the
// transformer declared for the property.
func Derive(ts *schema.TypeSchema, property string, ctor *schema.TransformerConstructor) (Accessor, error) {
	if ctor == nil {
		ctor = ts.Transformer(property)
	}
	if ctor == nil {
		return nil, fmt.Errorf("property %s has no transformer", describe(ts, property))
	}
	return &derived{ts: ts, property: property, ctor: ctor}, nil
}

func (a *derived) Name() string {
	return a.property
}

// Get returns the transformer's projection. An empty slot is absence for
// nullable properties and VoidError otherwise.
func (a *derived) Get(inst *Instance) (any, error) {
	v, _ := inst.load(a.property)
	t, ok := v.(schema.Transformer)
	if !ok {
		if a.ts.Nullable(a.property) {
			return nil, nil
		}
		return nil, condition.Void(a.ts.Name(), a.property)
	}
	return t.Out(), nil
}

// Set feeds value into the occupying transformer, or constructs one from
// value when the slot is empty. Absence clears a nullable slot.
func (a *derived) Set(inst *Instance, value any) error {
	if absent(value) {
		if a.ts.Nullable(a.property) {
			inst.clear(a.property)
			return nil
		}
		return condition.Void(a.ts.Name(), a.property)
	}

	v, _ := inst.load(a.property)
	if t, ok := v.(schema.Transformer); ok {
		if err := t.In(value); err != nil {
			return inst.settle(a.reject(err))
		}
		return nil
	}

	t, err := a.ctor.New(value)
	if err != nil {
		return inst.settle(a.reject(err))
	}
	inst.store(a.property, t)
	return nil
}

func (a *derived) reject(err error) condition.Result {
	return condition.Rejected(condition.From(err).At(a.ts.Name(), a.property))
}
