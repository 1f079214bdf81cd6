package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel selects the severity styling of a diagnostic block.
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

var levelStyles = map[ErrorLevel]struct {
	symbol string
	header []color.Attribute
	body   []color.Attribute
}{
	ErrorLevelError:   {"❌", []color.Attribute{color.FgRed, color.Bold}, []color.Attribute{color.FgRed}},
	ErrorLevelWarning: {"⚠️", []color.Attribute{color.FgYellow, color.Bold}, []color.Attribute{color.FgYellow}},
	ErrorLevelInfo:    {"ℹ️", []color.Attribute{color.FgCyan, color.Bold}, []color.Attribute{color.FgCyan}},
}

// ErrorOptions describes one diagnostic block: what went wrong, what it
// means, and where to go next.
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a diagnostic block:
//
//	❌ TYPE NOT FOUND: Scen
//	   Cannot find type 'Scen' in the registry.
//
//	   Did you mean: Scene?
//
//	   → See all types: facet types list
//	   → Get help: facet types --help
func FormatError(opts ErrorOptions) string {
	style := levelStyles[opts.Level]
	header := tint(opts.NoColor, style.header...)
	body := tint(opts.NoColor, style.body...)

	var b strings.Builder
	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", style.symbol, strings.ToUpper(opts.Context), opts.Problem)
		if opts.Problem != "" {
			body.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		header.Fprintf(&b, "%s %s\n", style.symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		tint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		arrows := tint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			arrows.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// TypeNotFoundError renders the standard block for a failed registry lookup.
func TypeNotFoundError(typeName string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "TYPE NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find type '%s' in the registry.", typeName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all types: facet types list",
			"Get help: facet types --help",
		},
		NoColor: noColor,
	})
}

// UnknownFormatError renders the standard block for a file whose extension
// maps to no supported format.
func UnknownFormatError(path string, supported []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "UNKNOWN FORMAT",
		Problem: fmt.Sprintf("Cannot tell the format of '%s' from its extension.", path),
		Suggestions: []string{
			strings.Join(supported, ", "),
		},
		HelpCommands: []string{
			"Get help: facet convert --help",
		},
		NoColor: noColor,
	})
}

// ParseFailedError renders the standard block for unparseable input.
func ParseFailedError(path, format string, err error, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "PARSE FAILED",
		Problem:     fmt.Sprintf("'%s' is not valid %s: %v.", path, format, err),
		Consequence: "Nothing was written.",
		HelpCommands: []string{
			"Inspect the file: facet inspect " + path,
		},
		NoColor: noColor,
	})
}
