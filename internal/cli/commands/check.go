package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/harmony/internal/cli/ui"
	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/logging"
	"github.com/conduit-lang/harmony/pkg/harmony"
)

// Outcome statuses of a checked set
const (
	StatusAccepted   = "accepted"
	StatusSuppressed = "suppressed"
	StatusRejected   = "rejected"
)

// ErrRejected is returned by check when the value is rejected
var ErrRejected = errors.New("value rejected")

// Outcome is the result of setting one value on a fresh instance
type Outcome struct {
	Status     string
	Value      any
	Conditions []*condition.Condition
	Err        error
}

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "check <Type> <property> <value>",
		Short: "Try a value against a property",
		Long: `Set a value on a fresh instance of a type and report whether it was
accepted, suppressed or rejected.

The value is read as a YAML scalar: 42 is an integer, 4.5 a number,
true a boolean, null is absence and anything else a string.

Examples:
  harmony check Person age 42
  harmony check Person age "'42'"
  harmony check Person nickname null`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sessionArgs []string
			if manifestPath != "" {
				sessionArgs = []string{manifestPath}
			}

			var seen []*condition.Condition
			recorder := logging.Func(func(c *condition.Condition) {
				seen = append(seen, c)
			})

			s, err := openSession(sessionArgs, cmd.ErrOrStderr(), harmony.WithConditionLogger(recorder))
			if err != nil {
				return err
			}
			defer s.close()

			typeName, property := args[0], args[1]
			ts, ok := s.catalog.Type(typeName)
			if !ok {
				fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFoundError(typeName, s.catalog.Types(), color.NoColor))
				return fmt.Errorf("type %s not found", typeName)
			}
			if _, ok := ts.Field(property); !ok {
				fmt.Fprint(cmd.ErrOrStderr(), ui.PropertyNotFoundError(typeName, property, ts.FieldNames(), color.NoColor))
				return fmt.Errorf("property %s.%s not found", typeName, property)
			}

			value, err := ParseValue(args[2])
			if err != nil {
				return err
			}

			inst, err := s.catalog.New(typeName)
			if err != nil {
				return err
			}

			out := Check(inst, property, value, func() []*condition.Condition { return seen })
			renderOutcome(cmd.OutOrStdout(), typeName, property, value, out)
			if out.Status == StatusRejected {
				return ErrRejected
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest to load instead of the configured one")

	return cmd
}

// ParseValue reads a command-line value as a YAML scalar or flow node
func ParseValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", raw, err)
	}
	return v, nil
}

// Check sets value on inst and classifies the result. conditions returns
// what the instance logged so far.
func Check(inst *harmony.Instance, property string, value any, conditions func() []*condition.Condition) Outcome {
	before := len(conditions())
	err := inst.Set(property, value)
	logged := conditions()[before:]

	if err != nil {
		return Outcome{Status: StatusRejected, Conditions: logged, Err: err}
	}
	stored, getErr := inst.Get(property)
	if len(logged) > 0 {
		return Outcome{Status: StatusSuppressed, Value: stored, Conditions: logged, Err: getErr}
	}
	return Outcome{Status: StatusAccepted, Value: stored, Err: getErr}
}

func renderOutcome(w io.Writer, typeName, property string, input any, out Outcome) {
	noColor := color.NoColor
	target := typeName + "." + property

	switch out.Status {
	case StatusAccepted:
		ui.WriteSuccess(w, fmt.Sprintf("%s accepted %v (%T), stored %v (%T)", target, input, input, out.Value, out.Value), noColor)
	case StatusSuppressed:
		details := make([]string, 0, len(out.Conditions))
		for _, c := range out.Conditions {
			details = append(details, fmt.Sprintf("[%s] %s", c.Level, c.Error()))
		}
		ui.WriteError(w, ui.ErrorOptions{
			Level:   ui.ErrorLevelWarning,
			Context: StatusSuppressed,
			Problem: fmt.Sprintf("%s kept %v (%T)", target, out.Value, out.Value),
			Details: details,
			NoColor: noColor,
		})
	default:
		details := []string{fmt.Sprintf("[%s] %s", condition.LevelOf(out.Err), out.Err)}
		for _, c := range out.Conditions {
			details = append(details, fmt.Sprintf("logged [%s] %s", c.Level, c.Kind))
		}
		ui.WriteError(w, ui.ErrorOptions{
			Context: StatusRejected,
			Problem: fmt.Sprintf("%s refused %v (%T)", target, input, input),
			Details: details,
			NoColor: noColor,
		})
	}
}
