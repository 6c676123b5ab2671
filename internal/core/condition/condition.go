// Package condition defines the failure conditions raised by the core:
// severity levels, the structured Condition error and the tagged Result
// accessors use to decide between suppression and propagation.
package condition

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the severity attached to a condition.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Suppressible reports whether a condition at this level is logged and
// swallowed instead of being returned to the caller. Only info and debug are.
func (l Level) Suppressible() bool {
	return l == LevelInfo || l == LevelDebug
}

// String returns the level name
func (l Level) String() string {
	return string(l)
}

// ParseLevel converts a level name to a Level
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	case LevelFatal:
		return LevelFatal, nil
	default:
		return "", fmt.Errorf("unknown level: %s", s)
	}
}

// Kind identifies what went wrong.
type Kind string

const (
	KindVoid           Kind = "VoidError"
	KindNotImplemented Kind = "NotImplemented"
	KindTypeValidation Kind = "InMemoryTypeValidationError"
	KindHook           Kind = "HookCondition"
)

// Sentinel errors for comparison using errors.Is()
var (
	ErrVoid           = errors.New("absent value for non-nullable property")
	ErrNotImplemented = errors.New("capability not implemented")
	ErrTypeValidation = errors.New("value does not satisfy type contract")
)

// Condition is the structured error raised by accessors, capability stubs
// and pre-validation hooks.
type Condition struct {
	Kind       Kind   // What went wrong
	Level      Level  // Severity, decides suppression
	Type       string // Owning type name, if known
	Property   string // Property name, if any
	Capability string // Missing capability for NotImplemented
	Instance   string // Instance identifier, set when logged by an instance
	Message    string // Human-readable message
	Err        error  // Underlying cause
}

// Error returns the string representation of the condition
func (c *Condition) Error() string {
	var b strings.Builder
	b.WriteString(string(c.Kind))

	switch {
	case c.Type != "" && c.Property != "":
		fmt.Fprintf(&b, " [%s.%s]", c.Type, c.Property)
	case c.Property != "":
		fmt.Fprintf(&b, " [%s]", c.Property)
	case c.Capability != "":
		fmt.Fprintf(&b, " [%s]", c.Capability)
	}

	if c.Message != "" {
		b.WriteString(": ")
		b.WriteString(c.Message)
	}
	if c.Err != nil {
		b.WriteString(": ")
		b.WriteString(c.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (c *Condition) Unwrap() error {
	return c.Err
}

// Is matches the sentinel error of the condition's kind.
func (c *Condition) Is(target error) bool {
	switch c.Kind {
	case KindVoid:
		return target == ErrVoid
	case KindNotImplemented:
		return target == ErrNotImplemented
	case KindTypeValidation:
		return target == ErrTypeValidation
	}
	return false
}

// At returns a copy of the condition scoped to a type and property.
func (c *Condition) At(typeName, property string) *Condition {
	cp := *c
	if cp.Type == "" {
		cp.Type = typeName
	}
	if cp.Property == "" {
		cp.Property = property
	}
	return &cp
}

// Void reports an absent value assigned to a non-nullable property.
func Void(typeName, property string) *Condition {
	return &Condition{
		Kind:     KindVoid,
		Level:    LevelError,
		Type:     typeName,
		Property: property,
		Message:  "no input given",
	}
}

// NotImplemented reports an invoked interface member without a concrete
// implementation.
func NotImplemented(capability string) *Condition {
	return &Condition{
		Kind:       KindNotImplemented,
		Level:      LevelError,
		Capability: capability,
		Message:    "not implemented",
	}
}

// TypeValidation reports a value that could neither be accepted as the
// contracted type nor constructed into it.
func TypeValidation(typeName, property string, value any, cause error) *Condition {
	return &Condition{
		Kind:     KindTypeValidation,
		Level:    LevelError,
		Type:     typeName,
		Property: property,
		Message:  fmt.Sprintf("cannot accept %T", value),
		Err:      cause,
	}
}

// New creates a hook condition at the given level. Pre-validation hooks
// return these to reject a value; info and debug rejections are suppressed.
func New(level Level, message string) *Condition {
	return &Condition{
		Kind:    KindHook,
		Level:   level,
		Message: message,
	}
}

// Wrap attaches a level to an arbitrary error.
func Wrap(level Level, err error) *Condition {
	if err == nil {
		return nil
	}
	return &Condition{
		Kind:  KindHook,
		Level: level,
		Err:   err,
	}
}

// leveled is satisfied by foreign errors that carry their own severity.
type leveled interface {
	Level() Level
}

// LevelOf classifies an error. Conditions and errors exposing Level()
// report their own level; every other error is LevelError.
func LevelOf(err error) Level {
	if err == nil {
		return ""
	}
	var c *Condition
	if errors.As(err, &c) && c.Level != "" {
		return c.Level
	}
	var l leveled
	if errors.As(err, &l) {
		return l.Level()
	}
	return LevelError
}

// From converts any error into a Condition, keeping existing conditions.
func From(err error) *Condition {
	if err == nil {
		return nil
	}
	var c *Condition
	if errors.As(err, &c) {
		return c
	}
	return Wrap(LevelOf(err), err)
}
