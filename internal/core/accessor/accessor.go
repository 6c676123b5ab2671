// Package accessor generates the validated get/set pairs of declared
// properties and the instances that hold their slots.
package accessor

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/conduit-lang/harmony/internal/core/schema"
)

// Accessor is the get/set pair of one property
type Accessor interface {
	Name() string
	Get(inst *Instance) (any, error)
	Set(inst *Instance, value any) error
}

// For builds the accessor matching a field's mode
func For(ts *schema.TypeSchema, property string) (Accessor, error) {
	f, ok := ts.Field(property)
	if !ok {
		return nil, fmt.Errorf("type %s has no property %s", ts.Name(), property)
	}

	switch f.Mode {
	case schema.ModeDerived:
		return Derive(ts, property, nil)
	case schema.ModeUniqueList:
		return UniqueList(ts, property), nil
	default:
		return Intercept(ts, property), nil
	}
}

// Compile builds the accessors of every declared property
func Compile(ts *schema.TypeSchema) (map[string]Accessor, error) {
	out := make(map[string]Accessor, len(ts.FieldNames()))
	for _, name := range ts.FieldNames() {
		a, err := For(ts, name)
		if err != nil {
			return nil, err
		}
		out[name] = a
	}
	return out, nil
}

// absent reports whether v is absence: nil, or a nil pointer, map, slice
// or interface.
func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// HookName returns the owner method consulted as the pre-validation hook
// of a property, e.g. ValidateAge for age.
func HookName(property string) string {
	r, size := utf8.DecodeRuneInString(property)
	if r == utf8.RuneError {
		return "Validate"
	}
	return "Validate" + string(unicode.ToUpper(r)) + property[size:]
}

// ownerHook finds a Validate<Property>(value) error method on owner.
// Values the method cannot take skip the hook and go on to the type
// contract.
func ownerHook(owner any, property string) schema.Hook {
	if owner == nil {
		return nil
	}
	m := reflect.ValueOf(owner).MethodByName(HookName(property))
	if !m.IsValid() {
		return nil
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != errorType {
		return nil
	}

	param := mt.In(0)
	return func(value any) error {
		arg := reflect.ValueOf(value)
		if !arg.Type().AssignableTo(param) {
			return nil
		}
		out := m.Call([]reflect.Value{arg})
		if out[0].IsNil() {
			return nil
		}
		return out[0].Interface().(error)
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func describe(ts *schema.TypeSchema, property string) string {
	return strings.Join([]string{ts.Name(), property}, ".")
}
