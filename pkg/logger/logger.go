package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "palma-lending"

// New builds the process logger. Output is JSON on stdout unless pretty is
// set, in which case a console writer is used. Unknown levels mean info.
func New(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(level, out).Caller().Logger()
}

// NewWithWriter is New without caller info, writing JSON to w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(level, w).Logger()
}

// Component derives a logger tagged with a subsystem name, e.g. "ledger" or
// "oracle".
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func build(level string, w io.Writer) zerolog.Context {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
