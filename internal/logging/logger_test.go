// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want %q", cfg.Level, "info")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Caller {
		t.Error("Caller = true, want false")
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

// Tests below reconfigure the process-wide logger and must not run in
// parallel.

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	l := Logger()
	l.Info().Int("campaigns", 3).Msg("snapshot loaded")

	out := buf.String()
	for _, want := range []string{`"message":"snapshot loaded"`, `"level":"info"`, `"campaigns":3`, `"time":`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	l := WithComponent("recommend")
	l.Info().Msg("analyzer finished")
	l.Warn().Msg("insufficient data")

	out := buf.String()
	if strings.Contains(out, "analyzer finished") {
		t.Errorf("info line emitted at warn level: %s", out)
	}
	if !strings.Contains(out, "insufficient data") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "disabled", Output: &buf})
	defer Init(DefaultConfig())

	l := Logger()
	l.Error().Msg("optimization failed")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	l := Logger()
	l.Info().Str("analyzer", "bids").Msg("console message")

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, "console message") {
		t.Errorf("output missing message: %s", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Errorf("console output is JSON: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithComponentAndForRun(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	defer Init(DefaultConfig())

	c := WithComponent("cli")
	c.Info().Msg("a")
	r := ForRun("run-1")
	r.Info().Msg("b")

	out := buf.String()
	if !strings.Contains(out, `"component":"cli"`) {
		t.Errorf("output missing component: %s", out)
	}
	if !strings.Contains(out, `"run_id":"run-1"`) {
		t.Errorf("output missing run_id: %s", out)
	}
}

func TestNewTestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Str("key", "value").Msg("captured")

	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("output missing field: %s", buf.String())
	}
}
