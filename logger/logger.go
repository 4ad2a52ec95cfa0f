// Package logger wraps zerolog.Logger with the constructors and context
// helpers used across the API.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger struct {
	zerolog.Logger
}

// NewLogger builds a JSON logger writing to stdout, tagged with role.
// In development the output is human readable instead.
func NewLogger(role string, pretty bool) *Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		level = zerolog.DebugLevel
	}

	l := zerolog.New(out).Level(level).With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromContext returns the logger attached by the request middleware, or the
// zerolog global logger when none is attached.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
