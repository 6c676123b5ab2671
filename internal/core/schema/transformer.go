package schema

import (
	"fmt"
	"reflect"
)

// Transformer is the bidirectional transform capability behind a derived
// property. In absorbs an external value; Out projects the current one.
type Transformer interface {
	In(value any) error
	Out() any
}

var transformerType = reflect.TypeOf((*Transformer)(nil)).Elem()

// TransformerConstructor builds the transformer occupying a derived slot.
type TransformerConstructor struct {
	*Constructor
}

// ParseTransformer parses fn as a constructor whose result implements
// Transformer.
func ParseTransformer(fn any) (*TransformerConstructor, error) {
	ctor, err := ParseConstructor(fn)
	if err != nil {
		return nil, err
	}
	if !ctor.Out.Implements(transformerType) {
		return nil, fmt.Errorf("%s does not implement In(any) error and Out() any", ctor.Out)
	}
	return &TransformerConstructor{Constructor: ctor}, nil
}

// New constructs a transformer from an external value.
func (tc *TransformerConstructor) New(value any) (Transformer, error) {
	out, err := tc.Call(value)
	if err != nil {
		return nil, err
	}
	t, ok := out.(Transformer)
	if rv := reflect.ValueOf(out); ok && rv.Kind() == reflect.Pointer && rv.IsNil() {
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("constructor %s returned no transformer", tc.Constructor)
	}
	return t, nil
}
