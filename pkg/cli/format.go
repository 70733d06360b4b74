// Package cli provides shared formatting helpers for fabvis command-line
// tools: ANSI colors, slice state and issue severity styling, and aligned
// table output.
package cli

import (
	"os"
	"strings"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/validate"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// Dim wraps s in ANSI dim. Returns s unchanged when NO_COLOR is set.
func Dim(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}

// State colors a slice lifecycle state: green for stable, yellow for
// transitional, red for error and terminal states.
func State(st slice.State) string {
	s := string(st)
	switch {
	case st == slice.StateActive:
		return Green(s)
	case st == slice.StateSubmitError || st == slice.StateModifyError || st.Terminal():
		return Red(s)
	case st.InFlight():
		return Yellow(s)
	default:
		return s
	}
}

// Severity colors a validation severity tag: red ERROR, yellow WARN.
func Severity(sev validate.Severity) string {
	switch sev {
	case validate.SeverityError:
		return Red("ERROR")
	case validate.SeverityWarning:
		return Yellow("WARN")
	default:
		return string(sev)
	}
}

// Dirty renders the pending-changes marker for slice listings.
func Dirty(dirty bool) string {
	if dirty {
		return Yellow("*")
	}
	return ""
}

// DotPad pads name with dots to the given width.
// Example: DotPad("node-a", 30) → "node-a ......................."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}
