// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports input that cannot be analyzed: a missing column,
// a rule violation on a record, an unresolved reference or an invalid
// configuration. It is always fatal for the run.
type ValidationError struct {
	Table    Table
	Column   string
	RecordID string
	Reason   string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation: ")
	if e.Table != "" {
		b.WriteString(string(e.Table))
	} else {
		b.WriteString("input")
	}
	if e.RecordID != "" {
		fmt.Fprintf(&b, "[%s]", e.RecordID)
	}
	if e.Column != "" {
		b.WriteString(".")
		b.WriteString(e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DiagnosticKind classifies a recovered problem.
type DiagnosticKind string

const (
	// DiagComputation flags a numeric inconsistency that was clamped or a
	// recommendation suppressed for carrying a non-finite value.
	DiagComputation DiagnosticKind = "computation"
	// DiagInsufficientData flags an analyzer or record skipped for lack of
	// evidence.
	DiagInsufficientData DiagnosticKind = "insufficient_data"
	// DiagOrphan flags a row whose reference could not be resolved.
	DiagOrphan DiagnosticKind = "orphan"
	// DiagInconsistent flags a reported value that disagrees with the
	// recomputed one.
	DiagInconsistent DiagnosticKind = "inconsistent"
)

// Diagnostic is a non-fatal finding surfaced in the run summary.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Analyzer string         `json:"analyzer,omitempty"`
	Table    Table          `json:"table,omitempty"`
	RecordID string         `json:"record_id,omitempty"`
	Field    string         `json:"field,omitempty"`
	Message  string         `json:"message"`
}
