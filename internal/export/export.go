// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package export encodes the result of an optimization run as the JSON
// envelope consumed by bulk-upload writers and report renderers.
//
// The engine output is deterministic; the run id and the generation
// timestamp are attached here and nowhere else.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bidwise/internal/recommend"
)

// Envelope is the document written for one run.
type Envelope struct {
	RunID           string                     `json:"run_id"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Summary         recommend.Summary          `json:"summary"`
}

// NewEnvelope wraps result. The timestamp is stored in UTC with second
// precision.
func NewEnvelope(runID string, generatedAt time.Time, result *recommend.Result) Envelope {
	env := Envelope{
		RunID:           runID,
		GeneratedAt:     generatedAt.UTC().Truncate(time.Second),
		Recommendations: []recommend.Recommendation{},
	}
	if result != nil {
		if result.Recommendations != nil {
			env.Recommendations = result.Recommendations
		}
		env.Summary = result.Summary
	}
	return env
}

// Write encodes env as indented JSON followed by a newline.
//
//nolint:gocritic // Envelope passed by value mirrors NewEnvelope's return
func Write(w io.Writer, env Envelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// WriteFile writes env to path through a temporary file in the same
// directory, so readers never observe a partial document.
//
//nolint:gocritic // Envelope passed by value mirrors NewEnvelope's return
func WriteFile(path string, env Envelope) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bidwise-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, env); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Read decodes an envelope previously written by Write.
func Read(r io.Reader) (Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
