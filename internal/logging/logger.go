// Package logging builds the zerolog loggers used across the core.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnote/omnote/internal/config"
)

// Config holds logging configuration.
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new zerolog logger with the given configuration. When
// OMNOTE_DEBUG is set, output is additionally appended to the debug log in
// the cache directory and the level is raised to at least debug.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stderr

	switch cfg.Format {
	case "console":
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: cfg.TimeFormat,
		}
	case "json":
		// JSON is the default zerolog format
		output = os.Stderr
	}

	if config.EnvSet("DEBUG") {
		if f := openDebugFile(); f != nil {
			output = zerolog.MultiLevelWriter(output, f)
		}
		if cfg.Level > zerolog.DebugLevel {
			cfg.Level = zerolog.DebugLevel
		}
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewFromEnv creates a logger based on environment variables.
// OMNOTE_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// OMNOTE_LOG_FORMAT: json, console (default: console)
// OMNOTE_DEBUG: any value enables the debug file sink
func NewFromEnv() zerolog.Logger {
	cfg := DefaultConfig()

	if level := config.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = ParseLevel(level)
	}
	if format := config.Getenv("LOG_FORMAT"); format != "" {
		switch format {
		case "json", "console":
			cfg.Format = format
		}
	}

	return New(cfg)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// openDebugFile opens the append-only diagnostic log. The debug log is
// observability only, so any failure here is swallowed.
func openDebugFile() *os.File {
	path, err := config.GetDebugLogFile()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil
	}
	return f
}
