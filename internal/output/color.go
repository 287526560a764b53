package output

import (
	"os"
	"regexp"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTerminal reports whether f is attached to a terminal. Commands use it
// to tell piped stdin from an interactive one.
func IsTerminal(f *os.File) bool {
	return isTerminal(f)
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		// Check if writer is a file and if it's a terminal
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

var markerRegex = regexp.MustCompile(`\[REDACTED_[A-Z_]+\]`)

// ColorizeMarkers highlights every redaction marker in text.
func ColorizeMarkers(text string) string {
	return markerRegex.ReplaceAllString(text, colorBold+colorYellow+"$0"+colorReset)
}

// FormatLine returns line with markers colored when colorize is set.
func FormatLine(line string, colorize bool) string {
	if colorize {
		return ColorizeMarkers(line)
	}
	return line
}

// ShouldColorize reports whether text written to w in mode gets colored.
func ShouldColorize(mode ColorMode, w interface{}) bool {
	return shouldColorize(mode, w)
}
