package commands

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"
)

// NewRegistrationsCommand creates the registrations command
func NewRegistrationsCommand() *cobra.Command {
	var (
		byModule bool
		server   string
	)

	cmd := &cobra.Command{
		Use:   "registrations [manifest]",
		Short: "Print the metadata each type deposits",
		Long: `Print, as JSON, the structures each type deposits for the hosting
framework: registration records, injection lists, controller aliases,
directives, events, listeners, IO bindings, request maps and debug levels.

Examples:
  harmony registrations
  harmony registrations --modules
  harmony registrations --receptors api`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			table := s.catalog.Registrations()
			var out any
			switch {
			case server != "":
				receptors := table.Receptors(server)
				if receptors == nil {
					receptors = []string{}
				}
				out = receptors
			case byModule:
				out = table.Modules()
			default:
				out = table.Structures()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&byModule, "modules", false, "Group registration records by module")
	cmd.Flags().StringVar(&server, "receptors", "", "List the types bound to a server")

	return cmd
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
