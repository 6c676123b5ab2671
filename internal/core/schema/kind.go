// Package schema provides the explicit, ordered declaration API for types:
// primitive kinds, type contracts, transformer constructors, the fluent
// builder and the per-registry schema table that owns the metadata store.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind represents the primitive kind of a value
type Kind string

const (
	KindNone     Kind = ""
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindTime     Kind = "time"
	KindDuration Kind = "duration"
	KindList     Kind = "list"
	KindMap      Kind = "map"
	KindObject   Kind = "object"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// String returns the kind name
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// IsPrimitive reports whether the kind is a scalar kind. Composite kinds
// (list, map, object) never match by kind alone.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindInteger, KindNumber, KindBoolean, KindTime, KindDuration:
		return true
	}
	return false
}

// Kinds returns every named kind
func Kinds() []Kind {
	return []Kind{
		KindString, KindInteger, KindNumber, KindBoolean,
		KindTime, KindDuration, KindList, KindMap, KindObject,
	}
}

// ParseKind converts a kind name to a Kind. A few common aliases are
// accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return KindString, nil
	case "integer", "int":
		return KindInteger, nil
	case "number", "float", "decimal":
		return KindNumber, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "time", "timestamp":
		return KindTime, nil
	case "duration":
		return KindDuration, nil
	case "list", "array":
		return KindList, nil
	case "map":
		return KindMap, nil
	case "object":
		return KindObject, nil
	default:
		return KindNone, fmt.Errorf("unknown kind: %s", s)
	}
}

// KindOf classifies a Go value. Absence is KindNone.
func KindOf(v any) Kind {
	if v == nil {
		return KindNone
	}
	return KindOfType(reflect.TypeOf(v))
}

// KindOfType classifies a Go type, looking through pointers.
func KindOfType(t reflect.Type) Kind {
	if t == nil {
		return KindNone
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Bool:
		return KindBoolean
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindMap
	default:
		return KindObject
	}
}
