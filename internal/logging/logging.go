// Package logging configures the process-wide zerolog logger and provides
// component-labeled child loggers for the engine packages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JokerFrankZ/convert-videos/internal/term"
)

// New builds the root logger. level is a zerolog level name (debug, info,
// warn, error); unknown values fall back to info. When stderr is an
// interactive terminal the human console writer is used, otherwise plain
// JSON lines so output stays machine-readable under redirection.
func New(level string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if term.WantConsole() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
}

// Component returns a child logger labeled with the given component name,
// so every line identifies the engine stage that produced it.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
