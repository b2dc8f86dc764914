// Package logging builds the structured zerolog logger shared by postpos
// binaries and the migration runner.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config selects the output format and minimum level.
type Config struct {
	Env   string    `env:"ENV" envDefault:"production"` // development -> console; anything else -> JSON
	Level string    `env:"LOG_LEVEL" envDefault:"info"` // trace, debug, info, warn, error
	Out   io.Writer                                    // defaults to stderr
}

// New creates a structured logger. Development uses a human-readable console
// writer; every other environment emits JSON lines.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = cfg.Out
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Env), "development") {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
