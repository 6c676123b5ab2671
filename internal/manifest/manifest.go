// Package manifest reads type definitions from YAML so they can be
// inspected and exercised without compiling Go declarations.
package manifest

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/harmony/internal/core/capability"
	"github.com/conduit-lang/harmony/internal/core/registration"
	"github.com/conduit-lang/harmony/internal/core/schema"
	"github.com/conduit-lang/harmony/pkg/harmony"
)

// Manifest is the root of a manifest file
type Manifest struct {
	Types []Type `yaml:"types"`
}

// Type describes one type definition
type Type struct {
	Name       string            `yaml:"name"`
	Logging    string            `yaml:"logging,omitempty"`
	Register   *Register         `yaml:"register,omitempty"`
	Directive  *Directive        `yaml:"directive,omitempty"`
	Fields     []Field           `yaml:"fields,omitempty"`
	Events     []Event           `yaml:"events,omitempty"`
	Listeners  []string          `yaml:"listeners,omitempty"`
	IO         *IO               `yaml:"io,omitempty"`
	Map        map[string]string `yaml:"map,omitempty"`
	Implements []Interface       `yaml:"implements,omitempty"`
}

// Register is a controller or service registration
type Register struct {
	Kind         string   `yaml:"kind"`
	Module       string   `yaml:"module"`
	Name         string   `yaml:"name,omitempty"`
	Deps         []string `yaml:"deps,omitempty"`
	ControllerAs string   `yaml:"controllerAs,omitempty"`
}

// Directive is a component directive
type Directive struct {
	Module       string `yaml:"module"`
	Selector     string `yaml:"selector"`
	Controller   string `yaml:"controller,omitempty"`
	ControllerAs string `yaml:"controllerAs,omitempty"`
	Restrict     string `yaml:"restrict,omitempty"`
	Replace      bool   `yaml:"replace,omitempty"`
	TemplateURL  string `yaml:"templateUrl,omitempty"`
	Template     string `yaml:"template,omitempty"`
	// Scope is true, a binding map, or absent
	Scope any `yaml:"scope,omitempty"`
}

// Field is a declared property
type Field struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	UniqueList bool   `yaml:"uniqueList,omitempty"`
}

// Event binds a handler to events
type Event struct {
	Handler string   `yaml:"handler"`
	Events  []string `yaml:"events"`
}

// IO binds the type to a server
type IO struct {
	Server string `yaml:"server"`
	Model  string `yaml:"model,omitempty"`
}

// Interface is an interface capability by method names
type Interface struct {
	Name    string   `yaml:"name"`
	Methods []string `yaml:"methods"`
}

// Load reads and validates a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates manifest YAML
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names, field types and registration kinds
func (m *Manifest) Validate() error {
	var errs error
	seen := make(map[string]bool)

	for i, t := range m.Types {
		if t.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("types[%d]: name is required", i))
			continue
		}
		if seen[t.Name] {
			errs = multierr.Append(errs, fmt.Errorf("type %s: defined twice", t.Name))
		}
		seen[t.Name] = true

		for _, f := range t.Fields {
			if f.Type == "" {
				continue
			}
			if _, err := fieldKind(f); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("type %s: field %s: %w", t.Name, f.Name, err))
			}
		}
		if t.Register != nil {
			switch registration.Kind(t.Register.Kind) {
			case registration.KindController, registration.KindService:
			default:
				errs = multierr.Append(errs, fmt.Errorf("type %s: unknown register kind %q", t.Name, t.Register.Kind))
			}
		}
	}
	return errs
}

// fieldKind parses a field type. Composite kinds need a Go type to
// accept values, which a manifest cannot name.
func fieldKind(f Field) (schema.Kind, error) {
	k, err := schema.ParseKind(f.Type)
	if err != nil {
		return schema.KindNone, err
	}
	if !k.IsPrimitive() {
		return schema.KindNone, fmt.Errorf("%s fields cannot be typed in a manifest", k)
	}
	if f.UniqueList {
		return schema.KindNone, fmt.Errorf("a unique list cannot be typed")
	}
	return k, nil
}

// Save writes a manifest file
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Find returns the named type
func (m *Manifest) Find(name string) (*Type, bool) {
	for i := range m.Types {
		if m.Types[i].Name == name {
			return &m.Types[i], true
		}
	}
	return nil, false
}

// Definitions converts every type to a definition
func (m *Manifest) Definitions() ([]*harmony.Definition, error) {
	defs := make([]*harmony.Definition, 0, len(m.Types))
	for _, t := range m.Types {
		def, err := t.Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Definition converts the type to a definition
func (t Type) Definition() (*harmony.Definition, error) {
	def := harmony.Define(t.Name)

	for _, f := range t.Fields {
		fb := def.Field(f.Name)
		if f.Nullable {
			fb.Nullable()
		} else {
			fb.NonNullable()
		}
		if f.UniqueList {
			fb.UniqueList()
		}
		if f.Type != "" {
			k, err := fieldKind(f)
			if err != nil {
				return nil, fmt.Errorf("type %s: field %s: %w", t.Name, f.Name, err)
			}
			fb.OfKind(k)
		}
	}

	for _, iface := range t.Implements {
		def.Implements(capability.NewInterface(iface.Name, iface.Methods...))
	}

	if r := t.Register; r != nil {
		p := harmony.Params{Module: r.Module, Name: r.Name, Deps: r.Deps, ControllerAs: r.ControllerAs}
		switch registration.Kind(r.Kind) {
		case registration.KindController:
			def.Controller(p)
		case registration.KindService:
			def.Service(p)
		default:
			return nil, fmt.Errorf("type %s: unknown register kind %q", t.Name, r.Kind)
		}
	}
	if d := t.Directive; d != nil {
		def.Component(harmony.DirectiveParams{
			Module:       d.Module,
			Selector:     d.Selector,
			Controller:   d.Controller,
			ControllerAs: d.ControllerAs,
			Restrict:     d.Restrict,
			Replace:      d.Replace,
			TemplateURL:  d.TemplateURL,
			Template:     d.Template,
			Scope:        d.Scope,
		})
	}
	for _, ev := range t.Events {
		def.On(ev.Handler, ev.Events...)
	}
	if t.Listeners != nil {
		def.Listeners(t.Listeners...)
	}
	if t.IO != nil {
		def.IO(t.IO.Server, t.IO.Model)
	}
	if t.Map != nil {
		def.AjaxMap(t.Map)
	}
	if t.Logging != "" {
		def.Logging(t.Logging)
	}
	return def, nil
}
