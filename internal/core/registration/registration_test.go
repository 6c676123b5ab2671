package registration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController(t *testing.T) {
	t.Run("name defaults to type name", func(t *testing.T) {
		d, err := For("PersonCtrl").Controller(Params{Module: "app"}).Build()
		require.NoError(t, err)

		r, ok := d.Record()
		require.True(t, ok)
		assert.Equal(t, Record{Module: "app", Kind: KindController, Name: "PersonCtrl"}, r)
		assert.Equal(t, map[string]Record{"app": r}, d.Register())

		_, hasDeps := d.Inject()
		assert.False(t, hasDeps)

		s := d.Structures()
		assert.NotContains(t, s, KeyInject)
		assert.Contains(t, s, KeyCtrlAs)
		assert.Nil(t, s[KeyCtrlAs])
	})

	t.Run("explicit name, deps and alias", func(t *testing.T) {
		d, err := For("Person").Controller(Params{
			Module:       "app",
			Name:         "PersonController",
			Deps:         []string{"$scope", "$http"},
			ControllerAs: "vm",
		}).Build()
		require.NoError(t, err)

		r, _ := d.Record()
		assert.Equal(t, "PersonController", r.Name)
		deps, ok := d.Inject()
		assert.True(t, ok)
		assert.Equal(t, []string{"$scope", "$http"}, deps)
		assert.Equal(t, "vm", d.ControllerAs())
		assert.Equal(t, "vm", d.Structures()[KeyCtrlAs])
	})

	t.Run("empty deps are still an injection list", func(t *testing.T) {
		d, err := For("Person").Controller(Params{Module: "app", Deps: []string{}}).Build()
		require.NoError(t, err)
		assert.Equal(t, []string{}, d.Structures()[KeyInject])
	})
}

func TestService(t *testing.T) {
	d, err := For("PeopleStore").Service(Params{Module: "data", Name: "people", Deps: []string{"$q"}}).Build()
	require.NoError(t, err)

	r, _ := d.Record()
	assert.Equal(t, Record{Module: "data", Kind: KindService, Name: "people"}, r)
	assert.NotContains(t, d.Structures(), KeyCtrlAs)

	_, err = For("Nameless").Service(Params{Module: "data"}).Build()
	assert.ErrorContains(t, err, "name is required")
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		want    string
	}{
		{"missing type", For(""), "type name is required"},
		{"missing module", For("A").Controller(Params{}), "module is required"},
		{"registered twice", For("A").Controller(Params{Module: "m"}).Service(Params{Module: "m", Name: "a"}), "already registered as controller"},
		{"component without selector", For("A").Component(DirectiveParams{Module: "m"}), "module and selector are required"},
		{"component twice", For("A").Component(DirectiveParams{Module: "m", Selector: "a"}).Component(DirectiveParams{Module: "m", Selector: "b"}), "declared twice"},
		{"io without server", For("A").IO("", "Model"), "server is required"},
		{"bad level", For("A").Logging("loud"), "unknown level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.builder.Build()
			assert.Nil(t, d)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestComponent(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := For("Card").Component(DirectiveParams{Module: "app", Selector: "card"}).Build()
		require.NoError(t, err)

		dir, ok := d.Directive()
		require.True(t, ok)
		assert.Equal(t, "A", dir.Restrict)
		assert.False(t, dir.Replace)
		assert.False(t, dir.Isolated())

		s := d.Structures()[KeyDirective].(map[string]any)
		assert.Nil(t, s["scope"])
		assert.Nil(t, s["templateUrl"])
		assert.Nil(t, s["controllerAs"])
	})

	t.Run("isolated scope and controller alias", func(t *testing.T) {
		d, err := For("Card").
			Component(DirectiveParams{Module: "app", Selector: "card", Controller: "CardCtrl", Restrict: "E", Replace: true, Scope: true}).
			Controller(Params{Module: "app", ControllerAs: "card"}).
			Build()
		require.NoError(t, err)

		dir, _ := d.Directive()
		assert.Equal(t, "card", dir.ControllerAs, "falls back to the controller alias")
		assert.Equal(t, "E", dir.Restrict)
		assert.True(t, dir.Replace)
		assert.True(t, dir.Isolated())
		assert.Empty(t, dir.Scope)
	})

	t.Run("scope bindings", func(t *testing.T) {
		d, err := For("Card").
			Component(DirectiveParams{Module: "app", Selector: "card", ControllerAs: "c", Scope: map[string]any{"person": "=", "skip": 1}}).
			Controller(Params{Module: "app", ControllerAs: "ignored"}).
			Build()
		require.NoError(t, err)

		dir, _ := d.Directive()
		assert.Equal(t, "c", dir.ControllerAs)
		assert.Equal(t, map[string]string{"person": "="}, dir.Scope)

		dir.Scope["person"] = "@"
		again, _ := d.Directive()
		assert.Equal(t, "=", again.Scope["person"], "directive copies are independent")
	})
}

func TestEvented(t *testing.T) {
	d, err := For("Button").
		Evented("onClick", "click", "touch").
		Evented("onClick", "click").
		Evented("onHover", "mouseover").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []Binding{
		{Event: "click", Handler: "onClick"},
		{Event: "touch", Handler: "onClick"},
		{Event: "click", Handler: "onClick"},
		{Event: "mouseover", Handler: "onHover"},
	}, d.Events(), "declaration order, duplicates kept")

	events := d.Events()
	events[0].Handler = "changed"
	assert.Equal(t, "onClick", d.Events()[0].Handler)
}

func TestAnnotations(t *testing.T) {
	d, err := For("Person").
		Listeners("person.changed", "person.removed").
		IO("api", "PersonModel").
		AjaxMap(map[string]string{"get": "/people/:id"}).
		Logging("").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"person.changed", "person.removed"}, d.Listeners())
	server, model := d.IO()
	assert.Equal(t, "api", server)
	assert.Equal(t, "PersonModel", model)
	assert.Equal(t, map[string]string{"get": "/people/:id"}, d.AjaxMap())
	assert.Equal(t, "info", d.DebugLevel())

	m := d.AjaxMap()
	m["get"] = "/changed"
	assert.Equal(t, "/people/:id", d.AjaxMap()["get"])

	warn, err := For("Quiet").Logging("WARNING").Build()
	require.NoError(t, err)
	assert.Equal(t, "warn", warn.DebugLevel())

	none, err := For("Plain").Build()
	require.NoError(t, err)
	assert.Empty(t, none.Structures())
}

func TestDescriptorJSON(t *testing.T) {
	d, err := For("Person").
		Controller(Params{Module: "app", Deps: []string{"$scope"}, ControllerAs: "vm"}).
		Evented("onSave", "save").
		Listeners("saved").
		IO("api", "PersonModel").
		AjaxMap(map[string]string{"save": "/people"}).
		Logging("debug").
		Build()
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, map[string]any{"app": map[string]any{"type": "controller", "name": "Person"}}, got["$register"])
	assert.Equal(t, []any{"$scope"}, got["$inject"])
	assert.Equal(t, "vm", got["CTRL_AS"])
	assert.Equal(t, []any{map[string]any{"event": "save", "handler": "onSave"}}, got["EVENTS"])
	assert.Equal(t, []any{"saved"}, got["LISTENERS"])
	assert.Equal(t, "PersonModel", got["MODEL"])
	assert.Equal(t, map[string]any{"save": "/people"}, got["MAP"])
	assert.Equal(t, "debug", got["DEBUG_LEVEL"])
}

func TestTable(t *testing.T) {
	table := NewTable()

	build := func(b *Builder) *Descriptor {
		d, err := b.Build()
		require.NoError(t, err)
		return d
	}

	require.NoError(t, table.Add(build(For("Zeta").Service(Params{Module: "data", Name: "zeta"}).IO("api", "Z"))))
	require.NoError(t, table.Add(build(For("Alpha").Controller(Params{Module: "app"}).IO("api", "A"))))
	require.NoError(t, table.Add(build(For("Beta").Controller(Params{Module: "app"}))))
	require.NoError(t, table.Add(build(For("Loose").IO("ws", "L"))))

	assert.Error(t, table.Add(build(For("Beta").Service(Params{Module: "x", Name: "b"}))))
	assert.Error(t, table.Add(nil))
	assert.Equal(t, 4, table.Len())

	d, ok := table.Get("Alpha")
	require.True(t, ok)
	assert.Equal(t, "Alpha", d.TypeName())

	var names []string
	for _, d := range table.List() {
		names = append(names, d.TypeName())
	}
	assert.Equal(t, []string{"Alpha", "Beta", "Loose", "Zeta"}, names)

	assert.Equal(t, map[string][]Record{
		"app":  {{Module: "app", Kind: KindController, Name: "Alpha"}, {Module: "app", Kind: KindController, Name: "Beta"}},
		"data": {{Module: "data", Kind: KindService, Name: "zeta"}},
	}, table.Modules())

	assert.Equal(t, []string{"Zeta", "Alpha"}, table.Receptors("api"))
	assert.Equal(t, []string{"Loose"}, table.Receptors("ws"))
	assert.Nil(t, table.Receptors(""))

	structures := table.Structures()
	assert.Len(t, structures, 4)
	assert.Equal(t, "L", structures["Loose"][KeyModel])
}
