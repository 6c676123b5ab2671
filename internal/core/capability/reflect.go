package capability

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/conduit-lang/harmony/internal/core/condition"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Interface returns the reflect.Type of the interface type T.
func Interface[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Verify checks at definition time that impl satisfies the Go interface
// iface. Every missing or mismatched method yields one NotImplemented
// condition; the conditions are combined into the returned error.
func Verify(iface reflect.Type, impl any) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("verify: %v is not an interface type", iface)
	}

	implType := reflect.TypeOf(impl)
	if implType != nil && implType.Implements(iface) {
		return nil
	}

	var err error
	for i := 0; i < iface.NumMethod(); i++ {
		want := iface.Method(i)
		if implType == nil {
			err = multierr.Append(err, condition.NotImplemented(want.Name))
			continue
		}
		got, ok := implType.MethodByName(want.Name)
		if !ok {
			err = multierr.Append(err, condition.NotImplemented(want.Name))
			continue
		}
		if !sameSignature(got.Type, want.Type) {
			c := condition.NotImplemented(want.Name)
			c.Message = fmt.Sprintf("signature %s does not match %s", got.Type, want.Type)
			err = multierr.Append(err, c)
		}
	}
	return err
}

// sameSignature compares a method with receiver against an interface method.
func sameSignature(method, ifaceMethod reflect.Type) bool {
	if method.NumIn()-1 != ifaceMethod.NumIn() || method.NumOut() != ifaceMethod.NumOut() {
		return false
	}
	if method.IsVariadic() != ifaceMethod.IsVariadic() {
		return false
	}
	for i := 0; i < ifaceMethod.NumIn(); i++ {
		if method.In(i+1) != ifaceMethod.In(i) {
			return false
		}
	}
	for i := 0; i < ifaceMethod.NumOut(); i++ {
		if method.Out(i) != ifaceMethod.Out(i) {
			return false
		}
	}
	return true
}

// FromInterface creates an interface bag naming the methods of a Go
// interface type. Go exposes methods in lexical order, which becomes the
// bag's declaration order.
func FromInterface(name string, iface reflect.Type) (*Bag, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("capability %s: %v is not an interface type", name, iface)
	}
	methods := make([]string, iface.NumMethod())
	for i := range methods {
		methods[i] = iface.Method(i).Name
	}
	return NewInterface(name, methods...), nil
}

// MixinOf creates a mixin bag from the exported methods of v, each wrapped
// as a Func. Arguments are assigned or converted to the parameter types; a
// trailing error result is returned as the error and the first other result
// as the value.
func MixinOf(name string, v any) (*Bag, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("capability %s: nil mixin source", name)
	}

	rt := rv.Type()
	members := make([]Member, 0, rt.NumMethod())
	for i := 0; i < rt.NumMethod(); i++ {
		members = append(members, Member{
			Name:  rt.Method(i).Name,
			Value: wrapMethod(rt.Method(i).Name, rv.Method(i)),
		})
	}
	return NewMixin(name, members...), nil
}

func wrapMethod(name string, fn reflect.Value) Func {
	ft := fn.Type()
	return func(args ...any) (any, error) {
		in, err := convertArgs(ft, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		return splitResults(fn.Call(in))
	}
}

func convertArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("want at least %d arguments, got %d", fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("want %d arguments, got %d", fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= fixed {
			pt = ft.In(fixed).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := assign(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func assign(arg any, to reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch to.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", to)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if v.Type().ConvertibleTo(to) && !(to.Kind() == reflect.String && v.CanInt()) {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), to)
}

func splitResults(out []reflect.Value) (any, error) {
	var (
		value any
		err   error
		found bool
	)
	for _, o := range out {
		if o.Type() == errorType {
			if !o.IsNil() {
				err = o.Interface().(error)
			}
			continue
		}
		if !found {
			value = o.Interface()
			found = true
		}
	}
	return value, err
}
