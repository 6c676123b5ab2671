package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/harmony/internal/cli/ui"
	"github.com/conduit-lang/harmony/internal/core/schema"
	"github.com/conduit-lang/harmony/internal/watch"
	"github.com/conduit-lang/harmony/pkg/harmony"
)

// TypeReport describes one loaded type
type TypeReport struct {
	Name         string         `json:"name"`
	Fields       []FieldReport  `json:"fields"`
	Members      []string       `json:"members"`
	Stubs        []string       `json:"stubs,omitempty"`
	Registration map[string]any `json:"registration,omitempty"`
}

// FieldReport describes one declared property
type FieldReport struct {
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Contract string `json:"contract,omitempty"`
	Nullable bool   `json:"nullable"`
}

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	var (
		format    string
		typeName  string
		watchFlag bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [manifest]",
		Short: "Show the types of a manifest",
		Long: `Load a manifest and show each type's fields, contracts, capabilities
and registration metadata.

Examples:
  harmony inspect
  harmony inspect types.yml --type Person
  harmony inspect --format json
  harmony inspect --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := inspect(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, format, typeName)
			if err != nil || !watchFlag {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New([]string{path}, func([]string) {
				fmt.Fprintln(cmd.OutOrStdout())
				// Failures are already rendered; keep watching.
				_, _ = inspect(cmd.OutOrStdout(), cmd.ErrOrStderr(), []string{path}, format, typeName)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.ErrOrStderr(), ui.Info("Watching "+path+" (Ctrl+C to stop)", color.NoColor))
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&typeName, "type", "", "Show a single type")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-inspect whenever the manifest changes")

	return cmd
}

// inspect renders the manifest at args (or the configured one) and returns
// the path it loaded.
func inspect(out, errOut io.Writer, args []string, format, typeName string) (string, error) {
	s, err := openSession(args, errOut)
	if err != nil {
		return "", err
	}
	defer s.close()

	names := s.catalog.Types()
	if typeName != "" {
		if _, ok := s.catalog.Type(typeName); !ok {
			fmt.Fprint(errOut, ui.TypeNotFoundError(typeName, names, color.NoColor))
			return s.path, fmt.Errorf("type %s not found", typeName)
		}
		names = []string{typeName}
	}

	reports := make([]TypeReport, 0, len(names))
	for _, name := range names {
		reports = append(reports, Report(s.catalog, name))
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return s.path, enc.Encode(reports)
	case "table":
		renderReports(out, reports, s.catalog.Registry().Stats())
		return s.path, nil
	default:
		return s.path, fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

// Report builds the report of a loaded type
func Report(c *harmony.Catalog, name string) TypeReport {
	ts, ok := c.Type(name)
	if !ok {
		return TypeReport{Name: name}
	}

	r := TypeReport{Name: name, Fields: []FieldReport{}}
	for _, f := range ts.Fields() {
		fr := FieldReport{Name: f.Name, Mode: f.Mode.String(), Nullable: ts.Nullable(f.Name)}
		if ct := ts.Contract(f.Name); ct != nil {
			fr.Contract = ct.String()
		}
		r.Fields = append(r.Fields, fr)
	}

	r.Members = ts.Members().Names()
	for _, m := range r.Members {
		if ts.Members().IsStub(m) {
			r.Stubs = append(r.Stubs, m)
		}
	}

	if d, ok := c.Registrations().Get(name); ok {
		if s := d.Structures(); len(s) > 0 {
			r.Registration = s
		}
	}
	return r
}

func renderReports(w io.Writer, reports []TypeReport, stats *schema.RegistryStats) {
	noColor := color.NoColor
	for _, r := range reports {
		ui.Header(w, r.Name, noColor)

		table := ui.NewTable(w, noColor, "FIELD", "MODE", "CONTRACT", "NULLABLE")
		for _, f := range r.Fields {
			contract := f.Contract
			if contract == "" {
				contract = "-"
			}
			table.AddRow(f.Name, f.Mode, contract, fmt.Sprint(f.Nullable))
		}
		if table.Len() > 0 {
			table.Render()
		}

		kv := ui.NewKeyValueTable(w, noColor)
		kv.AddRow("members", strings.Join(r.Members, ", "))
		if len(r.Stubs) > 0 {
			kv.AddRow("stubs", strings.Join(r.Stubs, ", "))
		}
		for _, key := range sortedKeys(r.Registration) {
			raw, _ := json.Marshal(r.Registration[key])
			kv.AddRow(key, string(raw))
		}
		kv.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d type(s), %d field(s): %d contracted, %d derived, %d unique list(s), %d nullable\n",
		stats.TotalTypes, stats.TotalFields, stats.ContractedFields,
		stats.DerivedFields, stats.UniqueLists, stats.NullableFields)
}
