// Package term provides terminal detection for log output formatting.
// The logging package uses it to decide between the human console writer
// and plain structured output, honoring NO_COLOR and dumb terminals.
package term

import (
	"os"
	"strings"
)

// WantConsole reports whether human-oriented console output should be used:
// stderr is a TTY, NO_COLOR is unset (https://no-color.org), and the
// terminal is not dumb.
func WantConsole() bool {
	return IsTerminal(os.Stderr) &&
		os.Getenv("NO_COLOR") == "" &&
		strings.ToLower(os.Getenv("TERM")) != "dumb"
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
