package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme provides color functions for different output elements
type ColorScheme struct {
	// WorkerID colors worker identifiers
	WorkerID func(format string, a ...interface{}) string

	// Reachable colors the reachable status
	Reachable func(format string, a ...interface{}) string

	// Unreachable colors the unreachable status
	Unreachable func(format string, a ...interface{}) string

	// Warning colors warning messages
	Warning func(format string, a ...interface{}) string

	// Header colors table headers
	Header func(format string, a ...interface{}) string

	// Disabled indicates if colors are disabled
	Disabled bool
}

// NewColorScheme creates a new color scheme.
// Colors are automatically disabled for non-TTY outputs or when noColor is true.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	useColor := !noColor && isTTY(w)

	if !useColor {
		return &ColorScheme{
			WorkerID:    color.New().Sprintf,
			Reachable:   color.New().Sprintf,
			Unreachable: color.New().Sprintf,
			Warning:     color.New().Sprintf,
			Header:      color.New().Sprintf,
			Disabled:    true,
		}
	}

	return &ColorScheme{
		WorkerID:    color.New(color.FgCyan, color.Bold).Sprintf,
		Reachable:   color.New(color.FgGreen).Sprintf,
		Unreachable: color.New(color.FgRed, color.Bold).Sprintf,
		Warning:     color.New(color.FgYellow).Sprintf,
		Header:      color.New(color.FgWhite, color.Bold).Sprintf,
		Disabled:    false,
	}
}

// StatusColor returns the color function matching a reachability status
func (cs *ColorScheme) StatusColor(status string) func(format string, a ...interface{}) string {
	switch status {
	case "reachable":
		return cs.Reachable
	case "unreachable":
		return cs.Unreachable
	default:
		return cs.Warning
	}
}

// isTTY checks if the writer is a TTY
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
