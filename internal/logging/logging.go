// Package logging builds the zerolog logger used by the notifyfwd binaries.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects the log level and output format.
type Config struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// New returns a logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	return NewWriter(cfg, os.Stderr)
}

// NewWriter returns a logger writing to w, human readable when cfg.Console is set.
func NewWriter(cfg Config, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(w).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, or def if unknown.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return def
	}
}
