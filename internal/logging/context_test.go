// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewRunID(t *testing.T) {
	t.Parallel()

	id1, id2 := NewRunID(), NewRunID()
	if len(id1) != 36 {
		t.Errorf("len(NewRunID()) = %d, want 36", len(id1))
	}
	if id1 == id2 {
		t.Error("NewRunID returned the same id twice")
	}
}

func TestStartRun(t *testing.T) {
	t.Parallel()

	if id := RunIDFromContext(context.Background()); id != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", id)
	}

	ctx, id := StartRun(context.Background(), "cli")
	if got := RunIDFromContext(ctx); got != id {
		t.Errorf("RunIDFromContext() = %q, want %q", got, id)
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = context.WithValue(ctx, runIDKey, "run-abc")

	Ctx(ctx).Info().Msg("with run")

	if out := buf.String(); !strings.Contains(out, `"run_id":"run-abc"`) {
		t.Errorf("output missing run_id: %s", out)
	}
}

func TestCtx_FallsBackToProcessLogger(t *testing.T) {
	t.Parallel()

	l := Ctx(context.Background())
	if l == nil {
		t.Fatal("Ctx() = nil")
	}
}
