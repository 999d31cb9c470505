// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package logging configures the zerolog logger shared by the bidwise CLI.
//
// Only cmd/bidwise touches the process-wide logger. The engine and the
// analyzers receive a zerolog.Logger from their caller and derive their own
// component loggers from it:
//
//	logging.Init(cfg.Logging)
//	engine, err := recommend.NewEngine(&cfg.Engine, logging.ForRun(runID))
//
// Levels, format and caller/timestamp flags come from the logging section of
// the bidwise configuration (BIDWISE_LOG_LEVEL, BIDWISE_LOG_FORMAT,
// BIDWISE_LOG_CALLER, BIDWISE_LOG_TIMESTAMP).
//
// Always terminate log chains with .Msg() or .Send().
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level. "disabled" silences the run entirely.
	Level string `koanf:"level" json:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is json (default) or console.
	Format string `koanf:"format" json:"format" validate:"omitempty,oneof=json console"`

	Caller    bool `koanf:"caller" json:"caller"`
	Timestamp bool `koanf:"timestamp" json:"timestamp"`

	// Output defaults to os.Stderr; stdout is reserved for recommendations.
	Output io.Writer `koanf:"-" json:"-"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // logging works before the CLI has loaded its config
func init() {
	log = build(DefaultConfig())
}

// Init (re)configures the process-wide logger.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	defer mu.Unlock()
	log = l
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ParseLevel converts a configured level name to a zerolog.Level. Empty and
// unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the process-wide logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// WithComponent returns a child of the process-wide logger tagged with
// component.
func WithComponent(component string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", component).Logger()
}

// ForRun returns a child of the process-wide logger tagged with the
// optimization run id. It is the logger handed to recommend.NewEngine.
func ForRun(runID string) zerolog.Logger {
	l := Logger()
	return l.With().Str("run_id", runID).Logger()
}

// NewTestLogger creates a logger that writes to w, independent of the
// process-wide configuration.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
