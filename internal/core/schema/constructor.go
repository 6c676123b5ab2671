package schema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotAFunction    = errors.New("constructor is not a function")
	ErrNotAConstructor = errors.New("function is not a recognizable constructor")
	ErrRejected        = errors.New("constructor rejected the value")
)

// Constructor is a parsed single-argument construction function.
//
// Supported shapes:
//   - func(src T) R
//   - func(src T) (R, bool)
//   - func(src T) (R, error)
//   - func(src T) (R, bool, error)
type Constructor struct {
	In      reflect.Type
	Out     reflect.Type
	HasBool bool
	HasErr  bool

	fn reflect.Value
}

// ParseConstructor inspects fn and returns its Constructor.
func ParseConstructor(fn any) (*Constructor, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrNotAFunction
	}
	if fnVal.IsNil() {
		return nil, ErrNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.IsVariadic() || fnType.NumOut() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotAConstructor, fnType)
	}

	c := &Constructor{
		In:  fnType.In(0),
		Out: fnType.Out(0),
		fn:  fnVal,
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		last := fnType.Out(1)
		switch {
		case last.Kind() == reflect.Bool:
			c.HasBool = true
		case last == errorType:
			c.HasErr = true
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotAConstructor, fnType)
		}
	case 3:
		if fnType.Out(1).Kind() != reflect.Bool || fnType.Out(2) != errorType {
			return nil, fmt.Errorf("%w: %s", ErrNotAConstructor, fnType)
		}
		c.HasBool = true
		c.HasErr = true
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotAConstructor, fnType)
	}

	return c, nil
}

// String returns the constructor signature
func (c *Constructor) String() string {
	return c.fn.Type().String()
}

// Call passes value to the constructor. The value must be assignable to
// the parameter type, or convertible to it without changing kind.
func (c *Constructor) Call(value any) (any, error) {
	arg, err := c.argument(value)
	if err != nil {
		return nil, err
	}

	out := c.fn.Call([]reflect.Value{arg})

	if c.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}
	if c.HasBool && !out[1].Bool() {
		return nil, fmt.Errorf("%w: %T", ErrRejected, value)
	}
	return out[0].Interface(), nil
}

func (c *Constructor) argument(value any) (reflect.Value, error) {
	if value == nil {
		switch c.In.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return reflect.Zero(c.In), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", c.In)
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(c.In) {
		return v, nil
	}
	if v.Type().ConvertibleTo(c.In) && KindOfType(v.Type()) == KindOfType(c.In) {
		return v.Convert(c.In), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, c.In)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
