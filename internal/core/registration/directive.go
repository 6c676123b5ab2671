package registration

// Directive restriction defaults
const (
	DefaultRestrict = "A"
)

// DirectiveParams are the parameters of a component directive. Scope is
// true for an isolated empty scope, a map[string]string of bindings, or
// nil for none.
type DirectiveParams struct {
	Module       string
	Selector     string
	Controller   string
	ControllerAs string
	Restrict     string
	Replace      bool
	TemplateURL  string
	Template     string
	Scope        any
}

// Directive is the directive definition handed to the framework
type Directive struct {
	Module       string
	Selector     string
	Controller   string
	ControllerAs string
	Restrict     string
	Replace      bool
	TemplateURL  string
	Template     string
	// Scope is nil for no scope; an empty map is an isolated scope.
	Scope map[string]string
}

func newDirective(p DirectiveParams, ctrlAs string) *Directive {
	d := &Directive{
		Module:       p.Module,
		Selector:     p.Selector,
		Controller:   p.Controller,
		ControllerAs: p.ControllerAs,
		Restrict:     p.Restrict,
		Replace:      p.Replace,
		TemplateURL:  p.TemplateURL,
		Template:     p.Template,
	}
	if d.ControllerAs == "" {
		d.ControllerAs = ctrlAs
	}
	if d.Restrict == "" {
		d.Restrict = DefaultRestrict
	}

	switch s := p.Scope.(type) {
	case bool:
		if s {
			d.Scope = map[string]string{}
		}
	case map[string]string:
		d.Scope = make(map[string]string, len(s))
		for k, v := range s {
			d.Scope[k] = v
		}
	case map[string]any:
		d.Scope = make(map[string]string, len(s))
		for k, v := range s {
			if str, ok := v.(string); ok {
				d.Scope[k] = str
			}
		}
	}
	return d
}

// Isolated reports whether the directive has its own scope
func (d Directive) Isolated() bool {
	return d.Scope != nil
}

func (d Directive) clone() Directive {
	if d.Scope != nil {
		scope := make(map[string]string, len(d.Scope))
		for k, v := range d.Scope {
			scope[k] = v
		}
		d.Scope = scope
	}
	return d
}

// structure renders the directive definition object; unset optional
// members are nil.
func (d Directive) structure() map[string]any {
	out := map[string]any{
		"module":       d.Module,
		"selector":     d.Selector,
		"controller":   nilIfEmpty(d.Controller),
		"controllerAs": nilIfEmpty(d.ControllerAs),
		"restrict":     d.Restrict,
		"replace":      d.Replace,
		"templateUrl":  nilIfEmpty(d.TemplateURL),
		"template":     nilIfEmpty(d.Template),
		"scope":        nil,
	}
	if d.Scope != nil {
		out["scope"] = d.clone().Scope
	}
	return out
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
