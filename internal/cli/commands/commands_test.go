package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/harmony/internal/cli/config"
	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/logging"
	"github.com/conduit-lang/harmony/internal/manifest"
	"github.com/conduit-lang/harmony/pkg/harmony"
)

const peopleManifest = `
types:
  - name: Person
    register:
      kind: controller
      module: app
      deps: ["$scope"]
      controllerAs: vm
    fields:
      - name: age
        type: integer
      - name: nickname
        type: string
        nullable: true
      - name: tags
        uniqueList: true
    io:
      server: api
      model: PersonModel
    implements:
      - name: Greeter
        methods: [Greet]
  - name: PeopleStore
    register:
      kind: service
      module: data
      name: people
`

// inProject runs the test from a temporary project holding manifest
func inProject(t *testing.T, manifestYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harmony.yml"), []byte("logging:\n  level: error\n"), 0644))
	if manifestYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultManifest), []byte(manifestYAML), 0644))
	}

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })
	return dir
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "harmony", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"version", "inspect", "registrations", "check", "generate"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	inProject(t, "")
	Version = "1.0.0-test"
	GitCommit = "abc123"

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Harmony version: 1.0.0-test")
	assert.Contains(t, out, "Git commit:")
	assert.Contains(t, out, "abc123")
}

func TestInspect(t *testing.T) {
	inProject(t, peopleManifest)

	t.Run("table", func(t *testing.T) {
		out, _, err := run(t, "inspect")
		require.NoError(t, err)
		assert.Contains(t, out, "Person\n──────\n")
		assert.Contains(t, out, "age       value        integer   false")
		assert.Contains(t, out, "stubs:")
		assert.Contains(t, out, "Greet")
		assert.Contains(t, out, `CTRL_AS:`)
		assert.Contains(t, out, "2 type(s), 3 field(s): 2 contracted, 0 derived, 1 unique list(s), 1 nullable")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, "inspect", "--format", "json", "--type", "Person")
		require.NoError(t, err)

		var reports []TypeReport
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 1)
		r := reports[0]
		assert.Equal(t, "Person", r.Name)
		assert.Equal(t, FieldReport{Name: "age", Mode: "value", Contract: "integer"}, r.Fields[0])
		assert.Equal(t, FieldReport{Name: "tags", Mode: "unique-list"}, r.Fields[2])
		assert.Equal(t, []string{"Greet"}, r.Stubs)
		assert.Contains(t, r.Members, "log")
		assert.Equal(t, "vm", r.Registration["CTRL_AS"])
	})

	t.Run("unknown type", func(t *testing.T) {
		_, errOut, err := run(t, "inspect", "--type", "Persn")
		assert.Error(t, err)
		assert.Contains(t, errOut, "Did you mean: Person?")
	})

	t.Run("watch returns when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out, errOut bytes.Buffer
		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"inspect", "--watch", "--format", "json"})
		require.NoError(t, cmd.ExecuteContext(ctx))
		assert.Contains(t, out.String(), `"name": "Person"`)
		assert.Contains(t, errOut.String(), "Watching")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := run(t, "inspect", "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestInspectBrokenManifest(t *testing.T) {
	inProject(t, "types:\n  - name: A\n    fields:\n      - name: x\n        type: blob\n  - name: A\n")

	_, errOut, err := run(t, "inspect")
	assert.Error(t, err)
	assert.Contains(t, errOut, "DEFINITION FAILED: 2 problem(s)")
	assert.Contains(t, errOut, "unknown kind: blob")
	assert.Contains(t, errOut, "defined twice")
}

func TestRegistrations(t *testing.T) {
	inProject(t, peopleManifest)

	out, _, err := run(t, "registrations")
	require.NoError(t, err)
	var structures map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &structures))
	assert.Equal(t, "vm", structures["Person"]["CTRL_AS"])
	assert.Equal(t, []any{"$scope"}, structures["Person"]["$inject"])
	assert.Equal(t, map[string]any{"data": map[string]any{"type": "service", "name": "people"}}, structures["PeopleStore"]["$register"])

	out, _, err = run(t, "registrations", "--modules")
	require.NoError(t, err)
	var modules map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &modules))
	assert.Equal(t, "Person", modules["app"][0]["name"])

	out, _, err = run(t, "registrations", "--receptors", "api")
	require.NoError(t, err)
	assert.JSONEq(t, `["Person"]`, out)

	out, _, err = run(t, "registrations", "--receptors", "ws")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestCheckCommand(t *testing.T) {
	inProject(t, peopleManifest)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{"accepted", []string{"Person", "age", "42"}, "Person.age accepted 42 (int), stored 42 (int)", nil},
		{"constructed", []string{"Person", "age", "42.0"}, "stored 42 (int)", nil},
		{"nullable absence", []string{"Person", "nickname", "null"}, "accepted <nil>", nil},
		{"unique list item", []string{"Person", "tags", "red"}, "stored [red]", nil},
		{"type validation", []string{"Person", "age", "old"}, "logged [error] InMemoryTypeValidationError", ErrRejected},
		{"void", []string{"Person", "age", "null"}, "no input given", ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"check"}, tt.args...)...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
		})
	}

	t.Run("unknown property", func(t *testing.T) {
		_, errOut, err := run(t, "check", "Person", "agee", "1")
		assert.Error(t, err)
		assert.Contains(t, errOut, "PROPERTY NOT FOUND: Person.agee")
		assert.Contains(t, errOut, "Did you mean: age, tags?")
	})

	t.Run("other manifest", func(t *testing.T) {
		other := filepath.Join(t.TempDir(), "other.yml")
		require.NoError(t, os.WriteFile(other, []byte("types:\n  - name: Tag\n    fields:\n      - name: label\n        type: string\n"), 0644))
		out, _, err := run(t, "check", "--manifest", other, "Tag", "label", "x")
		require.NoError(t, err)
		assert.Contains(t, out, "Tag.label accepted")
	})
}

type ageGuard struct{}

func (ageGuard) ValidateAge(v any) error {
	if n, ok := v.(int); ok && n < 0 {
		return condition.New(condition.LevelInfo, "age cannot be negative")
	}
	return nil
}

func TestCheck(t *testing.T) {
	var seen []*condition.Condition
	c := harmony.NewCatalog(harmony.WithConditionLogger(logging.Func(func(cond *condition.Condition) {
		seen = append(seen, cond)
	})))
	def := harmony.Define("Person")
	def.Field("age").NonNullable().OfKind("integer")
	require.NoError(t, c.Load(def))

	inst, err := c.New("Person", harmony.WithOwner(ageGuard{}))
	require.NoError(t, err)
	conditions := func() []*condition.Condition { return seen }

	out := Check(inst, "age", 7, conditions)
	assert.Equal(t, StatusAccepted, out.Status)
	assert.Equal(t, 7, out.Value)

	out = Check(inst, "age", -1, conditions)
	assert.Equal(t, StatusSuppressed, out.Status)
	assert.Equal(t, 7, out.Value, "previous value kept")
	require.Len(t, out.Conditions, 1)
	assert.Equal(t, "age cannot be negative", out.Conditions[0].Message)

	out = Check(inst, "age", "x", conditions)
	assert.Equal(t, StatusRejected, out.Status)
	assert.ErrorIs(t, out.Err, condition.ErrTypeValidation)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", 42},
		{"4.5", 4.5},
		{"true", true},
		{"null", nil},
		{"~", nil},
		{"hello", "hello"},
		{"'42'", "42"},
		{"[a, b]", []any{"a", "b"}},
		{"{id: 1}", map[string]any{"id": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseValue("[unterminated")
	assert.Error(t, err)
}

func TestGenerateType(t *testing.T) {
	dir := inProject(t, "")

	out, _, err := run(t, "generate", "type", "Tag",
		"--field", "label:string", "--field", "note:text?", "--field", "aliases[]",
		"--service", "tags", "--deps", "$http,$q")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Tag to")

	m, err := manifest.Load(filepath.Join(dir, config.DefaultManifest))
	require.NoError(t, err)
	tag, ok := m.Find("Tag")
	require.True(t, ok)
	assert.Equal(t, []manifest.Field{
		{Name: "label", Type: "string"},
		{Name: "note", Type: "text", Nullable: true},
		{Name: "aliases", UniqueList: true},
	}, tag.Fields)
	assert.Equal(t, &manifest.Register{Kind: "service", Module: "app", Name: "tags", Deps: []string{"$http", "$q"}}, tag.Register)

	_, _, err = run(t, "g", "type", "Person", "--controller", "--module", "web")
	require.NoError(t, err)
	m, _ = manifest.Load(filepath.Join(dir, config.DefaultManifest))
	assert.Len(t, m.Types, 2)
	person, _ := m.Find("Person")
	assert.Equal(t, "web", person.Register.Module)

	_, _, err = run(t, "generate", "type", "Tag")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "generate", "type", "Bad", "--field", "x:blob")
	assert.ErrorContains(t, err, "unknown kind")

	_, _, err = run(t, "generate", "type", "Both", "--controller", "--service", "both")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, _, err = run(t, "generate", "type")
	assert.ErrorContains(t, err, "type name required")
}

func TestTypeSpecDefaultServiceName(t *testing.T) {
	typ, err := TypeSpec{Name: "PeopleStore", Register: "service", Module: "data"}.Type()
	require.NoError(t, err)
	assert.Equal(t, "peopleStore", typ.Register.Name)

	_, err = TypeSpec{Name: "X", Register: "factory"}.Type()
	assert.ErrorContains(t, err, "unknown register kind")
}

func TestParseField(t *testing.T) {
	tests := []struct {
		raw     string
		want    manifest.Field
		wantErr bool
	}{
		{raw: "age:integer", want: manifest.Field{Name: "age", Type: "integer"}},
		{raw: "nickname:string?", want: manifest.Field{Name: "nickname", Type: "string", Nullable: true}},
		{raw: "note", want: manifest.Field{Name: "note"}},
		{raw: "maybe:?", want: manifest.Field{Name: "maybe", Nullable: true}},
		{raw: " tags[] ", want: manifest.Field{Name: "tags", UniqueList: true}},
		{raw: "[]", wantErr: true},
		{raw: "x:string[]", wantErr: true},
		{raw: ":string", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseField(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
