package schema

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// Contract is the contracted type of a property: the Go type values are
// expected to have, its declared primitive kind, and the constructor used
// to build the type from other values.
type Contract struct {
	Name string
	Kind Kind
	Type reflect.Type

	ctor *Constructor
}

// Accepts reports whether value may be stored as-is: it already has the
// contracted type, or it is a non-pointer of the same primitive kind.
func (c *Contract) Accepts(value any) bool {
	if value == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	if c.Type != nil {
		if vt == c.Type {
			return true
		}
		if c.Type.Kind() == reflect.Interface && vt.Implements(c.Type) {
			return true
		}
	}
	return c.Kind.IsPrimitive() && vt.Kind() != reflect.Pointer && KindOf(value) == c.Kind
}

// Construct builds the contracted type from value.
func (c *Contract) Construct(value any) (any, error) {
	if c.ctor == nil {
		return nil, fmt.Errorf("%s has no constructor", c.Name)
	}
	return c.ctor.Call(value)
}

// Constructor returns the parsed constructor, nil for kind-only contracts.
func (c *Contract) Constructor() *Constructor {
	return c.ctor
}

// String returns the contract name
func (c *Contract) String() string {
	return c.Name
}

// Constructed creates a contract around a constructor function. The
// contracted type is the constructor's result type.
func Constructed(name string, fn any) (*Contract, error) {
	ctor, err := ParseConstructor(fn)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", name, err)
	}
	return &Contract{
		Name: name,
		Kind: KindOfType(ctor.Out),
		Type: ctor.Out,
		ctor: ctor,
	}, nil
}

// OfKind creates the built-in contract of a kind. Composite kinds have no
// constructor.
func OfKind(k Kind) (*Contract, error) {
	switch k {
	case KindString:
		return String(), nil
	case KindInteger:
		return Integer(), nil
	case KindNumber:
		return Number(), nil
	case KindBoolean:
		return Boolean(), nil
	case KindTime:
		return Time(), nil
	case KindDuration:
		return Duration(), nil
	case KindList, KindMap, KindObject:
		return &Contract{Name: string(k), Kind: k}, nil
	default:
		return nil, fmt.Errorf("unknown kind: %s", k)
	}
}

func builtin(name string, k Kind, t reflect.Type, fn any) *Contract {
	ctor, err := ParseConstructor(fn)
	if err != nil {
		panic(fmt.Sprintf("builtin contract %s: %v", name, err))
	}
	return &Contract{Name: name, Kind: k, Type: t, ctor: ctor}
}

// String is the string primitive contract. Stringers and byte slices are
// constructible.
func String() *Contract {
	return builtin("string", KindString, reflect.TypeOf(""), func(v any) (string, error) {
		switch s := v.(type) {
		case fmt.Stringer:
			return s.String(), nil
		case []byte:
			return string(s), nil
		}
		return "", fmt.Errorf("cannot construct string from %T", v)
	})
}

// Integer is the integer primitive contract. Numbers with an integral value
// are constructible; strings are not.
func Integer() *Contract {
	return builtin("integer", KindInteger, reflect.TypeOf(0), func(v any) (int, error) {
		rv := reflect.ValueOf(v)
		if KindOf(v) == KindNumber && rv.Kind() != reflect.Pointer {
			f := rv.Float()
			if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
				return int(f), nil
			}
			return 0, fmt.Errorf("%v is not an integral number", f)
		}
		return 0, fmt.Errorf("cannot construct integer from %T", v)
	})
}

// Number is the floating point primitive contract. Integers are
// constructible.
func Number() *Contract {
	return builtin("number", KindNumber, reflect.TypeOf(0.0), func(v any) (float64, error) {
		rv := reflect.ValueOf(v)
		if KindOf(v) == KindInteger && rv.Kind() != reflect.Pointer {
			if rv.CanInt() {
				return float64(rv.Int()), nil
			}
			return float64(rv.Uint()), nil
		}
		return 0, fmt.Errorf("cannot construct number from %T", v)
	})
}

// Boolean is the boolean primitive contract. Nothing else is
// constructible.
func Boolean() *Contract {
	return builtin("boolean", KindBoolean, reflect.TypeOf(false), func(v any) (bool, bool) {
		return false, false
	})
}

// Time is the time contract. RFC 3339 strings and unix seconds are
// constructible.
func Time() *Contract {
	return builtin("time", KindTime, timeType, func(v any) (time.Time, error) {
		switch t := v.(type) {
		case string:
			return time.Parse(time.RFC3339, t)
		case int64:
			return time.Unix(t, 0).UTC(), nil
		case int:
			return time.Unix(int64(t), 0).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("cannot construct time from %T", v)
	})
}

// Duration is the duration contract. Duration strings such as "1h30m" are
// constructible.
func Duration() *Contract {
	return builtin("duration", KindDuration, durationType, func(v any) (time.Duration, error) {
		if s, ok := v.(string); ok {
			return time.ParseDuration(s)
		}
		return 0, fmt.Errorf("cannot construct duration from %T", v)
	})
}
