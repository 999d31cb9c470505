// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/bidwise/internal/reports"
)

var (
	// ErrInsufficientData matches every InsufficientDataError via errors.Is.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrComputation matches every ComputationError via errors.Is.
	ErrComputation = errors.New("computation error")

	// ErrBudgetNotConserved is returned when settled budget deltas do not
	// sum to zero.
	ErrBudgetNotConserved = errors.New("budget deltas do not sum to zero")
)

// InsufficientDataError is returned by an analyzer that has nothing to work
// with. The engine records it and continues with an empty result for that
// analyzer.
type InsufficientDataError struct {
	Analyzer string
	Table    reports.Table
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data in %s: %d rows, need %d", e.Analyzer, e.Table, e.Rows, e.Required)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Diagnostic converts the error into a summary diagnostic.
func (e *InsufficientDataError) Diagnostic() reports.Diagnostic {
	return reports.Diagnostic{
		Kind:     reports.DiagInsufficientData,
		Analyzer: e.Analyzer,
		Table:    e.Table,
		Message:  fmt.Sprintf("%d rows, need %d", e.Rows, e.Required),
	}
}

// ComputationError describes a value that could not be computed. It never
// aborts a run: the affected record is suppressed and reported.
type ComputationError struct {
	Analyzer string
	Table    reports.Table
	RecordID string
	Field    string
	Value    float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s[%s].%s: non-finite value %v", e.Analyzer, e.Table, e.RecordID, e.Field, e.Value)
}

// Is reports whether target is ErrComputation.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// Diagnostic converts the error into a summary diagnostic.
func (e *ComputationError) Diagnostic() reports.Diagnostic {
	return reports.Diagnostic{
		Kind:     reports.DiagComputation,
		Analyzer: e.Analyzer,
		Table:    e.Table,
		RecordID: e.RecordID,
		Field:    e.Field,
		Message:  fmt.Sprintf("non-finite value %v; recommendation suppressed", e.Value),
	}
}

// configError turns a configuration failure into a fatal ValidationError.
func configError(err error) error {
	return &reports.ValidationError{Table: reports.TableConfig, Reason: err.Error()}
}
