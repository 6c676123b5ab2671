package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func palette(level ErrorLevel, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		header, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		header, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		header, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// FormatError renders a message with its details, suggestions and help
// commands.
//
// Example output:
//
//	❌ TYPE NOT FOUND: Persn
//	   Did you mean: Person?
//
//	   → List types: harmony inspect
func FormatError(opts ErrorOptions) string {
	var b strings.Builder
	header, body, symbol := palette(opts.Level, opts.NoColor)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	for _, d := range opts.Details {
		body.Fprintf(&b, "   %s\n", d)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted message to w
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// TypeNotFoundError reports an unknown type name with close matches
func TypeNotFoundError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "TYPE NOT FOUND",
		Problem:      name,
		Suggestions:  Suggest(name, known),
		HelpCommands: []string{"List types: harmony inspect"},
		NoColor:      noColor,
	})
}

// PropertyNotFoundError reports an undeclared property with close matches
func PropertyNotFoundError(typeName, property string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "PROPERTY NOT FOUND",
		Problem:      typeName + "." + property,
		Suggestions:  Suggest(property, known),
		HelpCommands: []string{"Show fields: harmony inspect --format table"},
		NoColor:      noColor,
	})
}

// DefinitionError reports manifest or definition failures, one detail line
// per accumulated error.
func DefinitionError(errs []error, noColor bool) string {
	details := make([]string, 0, len(errs))
	for _, err := range errs {
		details = append(details, err.Error())
	}
	return FormatError(ErrorOptions{
		Context: "DEFINITION FAILED",
		Problem: fmt.Sprintf("%d problem(s)", len(errs)),
		Details: details,
		HelpCommands: []string{
			"Check the manifest: harmony inspect <manifest>",
		},
		NoColor: noColor,
	})
}

// ConfigError reports a configuration failure
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "CONFIGURATION ERROR",
		Problem:      message,
		HelpCommands: []string{"View config: cat harmony.yml"},
		NoColor:      noColor,
	})
}

// Warning creates a warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates an informational message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}
