package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/conduit-lang/harmony/internal/cli/config"
	"github.com/conduit-lang/harmony/internal/cli/ui"
	"github.com/conduit-lang/harmony/internal/core/logging"
	"github.com/conduit-lang/harmony/internal/manifest"
	"github.com/conduit-lang/harmony/pkg/harmony"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "harmony",
		Short: "Inspect and exercise type definitions",
		Long: color.CyanString(`Harmony - typed properties and registration metadata

Harmony reads type definitions from a manifest, validates them and
reports the metadata each type deposits for the hosting framework.

Features:
  • Type contracts with constructor coercion
  • Suppressible pre-validation conditions
  • Capability composition with interface stubs
  • Controller, service and directive registration records`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewRegistrationsCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewGenerateCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the harmony version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("Harmony version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// session is what every manifest-backed command works on
type session struct {
	cfg      *config.Config
	logger   *logging.ZapLogger
	path     string
	manifest *manifest.Manifest
	catalog  *harmony.Catalog
}

// openSession loads the configuration, the manifest named by args (or the
// configured one) and a catalog of its definitions. Definition failures
// are rendered to errOut before being returned.
func openSession(args []string, errOut io.Writer, catalogOpts ...harmony.Option) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), color.NoColor))
		return nil, err
	}

	logger, err := cfg.Logger(Version)
	if err != nil {
		return nil, err
	}

	path := cfg.ManifestPath(".")
	if len(args) > 0 {
		path = args[0]
	}

	m, err := manifest.Load(path)
	if err != nil {
		fmt.Fprint(errOut, ui.DefinitionError(splitErrors(err), color.NoColor))
		return nil, err
	}

	defs, err := m.Definitions()
	if err != nil {
		return nil, err
	}

	opts := append([]harmony.Option{harmony.WithLogger(logger.Zap())}, catalogOpts...)
	catalog := harmony.NewCatalog(opts...)
	if err := catalog.Load(defs...); err != nil {
		fmt.Fprint(errOut, ui.DefinitionError(splitErrors(err), color.NoColor))
		return nil, fmt.Errorf("%s: definitions failed to load", path)
	}

	return &session{cfg: cfg, logger: logger, path: path, manifest: m, catalog: catalog}, nil
}

func (s *session) close() {
	_ = s.logger.Zap().Sync()
}

// splitErrors flattens accumulated errors for rendering, looking through
// wrapping for the first group.
func splitErrors(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if group := multierr.Errors(e); len(group) > 1 {
			return group
		}
	}
	return []error{err}
}
