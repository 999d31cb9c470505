// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	loggerKey contextKey = "logger"
)

// NewRunID returns a random id for one optimization run. It labels the
// output envelope and correlates log lines; it never feeds recommendation
// ids, which stay deterministic.
func NewRunID() string {
	return uuid.New().String()
}

// StartRun returns a context carrying a fresh run id and a logger for
// component, along with the id.
//
//	ctx, runID := logging.StartRun(cmd.Context(), "cli")
//	logging.Ctx(ctx).Info().Msg("snapshot loaded")
func StartRun(ctx context.Context, component string) (context.Context, string) {
	id := NewRunID()
	ctx = context.WithValue(ctx, runIDKey, id)
	ctx = ContextWithLogger(ctx, WithComponent(component))
	return ctx, id
}

// RunIDFromContext returns the run id carried by ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores logger in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger stored in ctx, falling back to the process-wide
// logger, with run_id attached when ctx carries one.
func Ctx(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		logger = Logger()
	}
	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With().Str("run_id", runID).Logger()
	}
	return &logger
}
