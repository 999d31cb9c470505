// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bidwise/internal/reports"
)

// Analyzer turns the report tables into recommendations of one kind.
//
// Implementations must be pure: no I/O, no shared mutable state, and the
// same Input must always produce the same Output in the same order. The
// engine runs analyzers concurrently on a shared read-only Input.
type Analyzer interface {
	// Name returns the analyzer's unique identifier.
	Name() string

	// Analyze produces recommendations. Returning an *InsufficientDataError
	// makes the engine treat the result as empty; any other error aborts the run.
	Analyze(ctx context.Context, in *Input) (Output, error)
}

// Input is the read-only state shared by every analyzer in one run.
type Input struct {
	Snapshot *reports.Snapshot
	Index    *reports.Index
	Config   *Config
	Logger   zerolog.Logger
}

// Output is what one analyzer returns.
type Output struct {
	Recommendations []Recommendation
	Diagnostics     []reports.Diagnostic
}

// BaseAnalyzer provides the name and the diagnostic helpers shared by
// analyzer implementations.
type BaseAnalyzer struct {
	name string
}

// NewBaseAnalyzer creates a new base analyzer with the given name.
func NewBaseAnalyzer(name string) BaseAnalyzer {
	return BaseAnalyzer{name: name}
}

// Name returns the analyzer name.
func (b *BaseAnalyzer) Name() string {
	return b.name
}

// InsufficientData builds the error an analyzer returns when a table is
// too small to analyze.
func (b *BaseAnalyzer) InsufficientData(table reports.Table, rows, required int) error {
	return &InsufficientDataError{Analyzer: b.name, Table: table, Rows: rows, Required: required}
}

// Orphan records a row skipped because its campaign is unknown.
func (b *BaseAnalyzer) Orphan(table reports.Table, recordID, campaignID string) reports.Diagnostic {
	return reports.Diagnostic{
		Kind:     reports.DiagOrphan,
		Analyzer: b.name,
		Table:    table,
		RecordID: recordID,
		Field:    "campaign_id",
		Message:  fmt.Sprintf("unknown campaign %q; row skipped", campaignID),
	}
}

// Skipped records a row left out for lack of evidence.
func (b *BaseAnalyzer) Skipped(table reports.Table, recordID, reason string) reports.Diagnostic {
	return reports.Diagnostic{
		Kind:     reports.DiagInsufficientData,
		Analyzer: b.name,
		Table:    table,
		RecordID: recordID,
		Message:  reason,
	}
}
