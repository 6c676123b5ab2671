package accessor

import (
	"reflect"

	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

// uniqueList appends items that match no existing item
type uniqueList struct {
	ts       *schema.TypeSchema
	property string
}

// UniqueList builds the accessor of a unique-list property. Set appends.
func UniqueList(ts *schema.TypeSchema, property string) Accessor {
	return &uniqueList{ts: ts, property: property}
}

func (a *uniqueList) Name() string {
	return a.property
}

// Get returns a copy of the list, empty when unset
func (a *uniqueList) Get(inst *Instance) (any, error) {
	v, _ := inst.load(a.property)
	items, _ := v.([]any)
	out := make([]any, len(items))
	copy(out, items)
	return out, nil
}

// Set appends item unless it matches an existing item. Absence clears a
// nullable list.
func (a *uniqueList) Set(inst *Instance, item any) error {
	_, err := a.add(inst, item)
	return err
}

func (a *uniqueList) add(inst *Instance, item any) (bool, error) {
	if absent(item) {
		if a.ts.Nullable(a.property) {
			inst.clear(a.property)
			return false, nil
		}
		return false, condition.Void(a.ts.Name(), a.property)
	}

	v, _ := inst.load(a.property)
	items, _ := v.([]any)
	for _, existing := range items {
		if matches(existing, item) {
			return false, nil
		}
	}

	next := make([]any, len(items), len(items)+1)
	copy(next, items)
	inst.store(a.property, append(next, item))
	return true, nil
}

// matches compares item against existing. Maps match when item agrees on
// every key of existing; other values must be deeply equal.
func matches(existing, item any) bool {
	ev, iv := reflect.ValueOf(existing), reflect.ValueOf(item)
	if ev.Kind() != reflect.Map || iv.Kind() != reflect.Map {
		return reflect.DeepEqual(existing, item)
	}
	if !ev.Type().Key().AssignableTo(iv.Type().Key()) {
		return false
	}

	iter := ev.MapRange()
	for iter.Next() {
		got := iv.MapIndex(iter.Key())
		if !got.IsValid() || !reflect.DeepEqual(iter.Value().Interface(), got.Interface()) {
			return false
		}
	}
	return true
}
