package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/harmony/internal/cli/config"
	"github.com/conduit-lang/harmony/internal/cli/ui"
	"github.com/conduit-lang/harmony/internal/core/registration"
	"github.com/conduit-lang/harmony/internal/manifest"
)

// TypeSpec is what generate needs to scaffold a manifest entry
type TypeSpec struct {
	Name     string
	Register string
	Module   string
	Service  string
	Deps     []string
	Fields   []string
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Scaffold manifest entries",
		Long: `Scaffold manifest entries.

Available generators:
  type - Add a type definition to the manifest

Examples:
  harmony generate type Person --field age:integer --field nickname:string?
  harmony g type --interactive`,
	}

	cmd.AddCommand(newGenerateTypeCommand())
	return cmd
}

func newGenerateTypeCommand() *cobra.Command {
	var (
		interactive  bool
		controller   bool
		req          TypeSpec
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "type [name]",
		Short: "Add a type to the manifest",
		Long: `Add a type definition to the manifest, creating the file if needed.

Fields are given as name:type. A trailing ? makes the field nullable and
a trailing [] makes it a unique list:

  --field age:integer --field nickname:string? --field tags[]

Examples:
  harmony generate type Person --controller --field age:integer
  harmony generate type PeopleStore --service people --deps '$http'
  harmony generate type --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if req.Module == "" {
				req.Module = cfg.Registration.DefaultModule
			}
			if manifestPath == "" {
				manifestPath = cfg.ManifestPath(".")
			}
			if len(args) > 0 {
				req.Name = args[0]
			}

			if interactive {
				if err := askTypeSpec(&req); err != nil {
					return err
				}
			}
			if req.Name == "" {
				return fmt.Errorf("type name required\n\nUsage: harmony generate type <name>")
			}

			if err := GenerateType(manifestPath, req); err != nil {
				return err
			}

			printNextSteps(cmd.OutOrStdout(), manifestPath, req.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the type definition")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest to update instead of the configured one")
	cmd.Flags().StringArrayVarP(&req.Fields, "field", "f", nil, "Field as name:type, name:type? or name[]")
	cmd.Flags().BoolVar(&controller, "controller", false, "Register the type as a controller")
	cmd.Flags().StringVar(&req.Service, "service", "", "Register the type as a service with this name")
	cmd.Flags().StringVar(&req.Module, "module", "", "Module for the registration (default from config)")
	cmd.Flags().StringSliceVar(&req.Deps, "deps", nil, "Injected dependencies")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case controller && req.Service != "":
			return fmt.Errorf("--controller and --service are mutually exclusive")
		case controller:
			req.Register = string(registration.KindController)
		case req.Service != "":
			req.Register = string(registration.KindService)
		}
		return nil
	}

	return cmd
}

// GenerateType adds a type to the manifest at path
func GenerateType(path string, req TypeSpec) error {
	if req.Name == "" {
		return fmt.Errorf("type name required")
	}

	m := &manifest.Manifest{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := manifest.Load(path)
		if err != nil {
			return err
		}
		m = loaded
	}

	if _, exists := m.Find(req.Name); exists {
		return fmt.Errorf("type %s already exists in %s", req.Name, path)
	}

	t, err := req.Type()
	if err != nil {
		return err
	}
	m.Types = append(m.Types, t)

	if err := m.Validate(); err != nil {
		return err
	}
	return manifest.Save(path, m)
}

// Type converts the request to a manifest entry
func (r TypeSpec) Type() (manifest.Type, error) {
	t := manifest.Type{Name: r.Name}

	for _, raw := range r.Fields {
		f, err := ParseField(raw)
		if err != nil {
			return t, err
		}
		t.Fields = append(t.Fields, f)
	}

	switch registration.Kind(r.Register) {
	case "":
	case registration.KindController:
		t.Register = &manifest.Register{Kind: r.Register, Module: r.Module, Deps: r.Deps}
	case registration.KindService:
		name := r.Service
		if name == "" {
			name = strings.ToLower(r.Name[:1]) + r.Name[1:]
		}
		t.Register = &manifest.Register{Kind: r.Register, Module: r.Module, Name: name, Deps: r.Deps}
	default:
		return t, fmt.Errorf("unknown register kind %q", r.Register)
	}
	return t, nil
}

// ParseField reads name:type, name:type? or name[]
func ParseField(raw string) (manifest.Field, error) {
	raw = strings.TrimSpace(raw)
	if name, ok := strings.CutSuffix(raw, "[]"); ok {
		if name == "" || strings.Contains(name, ":") {
			return manifest.Field{}, fmt.Errorf("invalid unique list field %q", raw)
		}
		return manifest.Field{Name: name, UniqueList: true}, nil
	}

	name, typ, _ := strings.Cut(raw, ":")
	if name == "" {
		return manifest.Field{}, fmt.Errorf("invalid field %q", raw)
	}
	f := manifest.Field{Name: name}
	if t, ok := strings.CutSuffix(typ, "?"); ok {
		f.Nullable = true
		typ = t
	}
	f.Type = typ
	return f, nil
}

var errAborted = errors.New("generation aborted")

func askTypeSpec(req *TypeSpec) error {
	if req.Name == "" {
		prompt := &survey.Input{Message: "Type name (CamelCase):"}
		if err := survey.AskOne(prompt, &req.Name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if req.Register == "" {
		var kind string
		prompt := &survey.Select{
			Message: "Register as:",
			Options: []string{"nothing", string(registration.KindController), string(registration.KindService)},
			Default: "nothing",
		}
		if err := survey.AskOne(prompt, &kind); err != nil {
			return err
		}
		if kind != "nothing" {
			req.Register = kind
		}
	}

	if req.Register == string(registration.KindService) && req.Service == "" {
		prompt := &survey.Input{Message: "Service name:"}
		if err := survey.AskOne(prompt, &req.Service, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	for {
		var field string
		prompt := &survey.Input{
			Message: "Field (name:type, name:type?, name[]; empty to finish):",
		}
		if err := survey.AskOne(prompt, &field, survey.WithValidator(validateField)); err != nil {
			return err
		}
		if field == "" {
			break
		}
		req.Fields = append(req.Fields, field)
	}

	var ok bool
	confirm := &survey.Confirm{
		Message: fmt.Sprintf("Add %s with %d field(s)?", req.Name, len(req.Fields)),
		Default: true,
	}
	if err := survey.AskOne(confirm, &ok); err != nil {
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}

func validateField(ans interface{}) error {
	s, _ := ans.(string)
	if s == "" {
		return nil
	}
	f, err := ParseField(s)
	if err != nil {
		return err
	}
	_, err = manifest.Type{Name: "T", Fields: []manifest.Field{f}}.Definition()
	return err
}

func printNextSteps(w io.Writer, path, name string) {
	noColor := color.NoColor
	ui.WriteSuccess(w, fmt.Sprintf("Added %s to %s", name, path), noColor)

	infoColor := color.New(color.FgCyan)
	if noColor {
		infoColor.DisableColor()
	}
	infoColor.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. Review %s\n", path)
	fmt.Fprintf(w, "  2. Run 'harmony inspect --type %s'\n", name)
	fmt.Fprintf(w, "  3. Try a value with 'harmony check %s <property> <value>'\n", name)
}
