// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/metrics"
	"github.com/tomtom215/bidwise/internal/reports"
)

// Engine runs the registered analyzers over one snapshot and merges their
// output. Registration must finish before the first Run; Run itself is safe
// for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	strictReferences bool

	analyzers []Analyzer
	mu        sync.RWMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrictReferences controls whether unresolved campaign references in
// the snapshot are fatal (the default) or skipped by each analyzer.
func WithStrictReferences(strict bool) Option {
	return func(e *Engine) {
		e.strictReferences = strict
	}
}

// NewEngine creates a new recommendation engine. The configuration is
// validated here; an invalid configuration is a *reports.ValidationError.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", configError(err))
	}

	e := &Engine{
		config:           cfg.Clone(),
		logger:           logger.With().Str("component", "recommend").Logger(),
		strictReferences: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Register adds an analyzer. Analyzers run concurrently but their outputs
// are merged in registration order.
func (e *Engine) Register(a Analyzer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.analyzers = append(e.analyzers, a)
	e.logger.Info().
		Str("analyzer", a.Name()).
		Msg("registered analyzer")
}

// Analyzers returns the names of the registered analyzers.
func (e *Engine) Analyzers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, len(e.analyzers))
	for i, a := range e.analyzers {
		names[i] = a.Name()
	}
	return names
}

func (e *Engine) getAnalyzers() []Analyzer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Analyzer(nil), e.analyzers...)
}

// Run validates and analyzes one snapshot. A *reports.ValidationError (or
// a join of them) aborts the run before any analyzer executes. The caller's
// snapshot is never modified.
func (e *Engine) Run(ctx context.Context, snapshot *reports.Snapshot) (*Result, error) {
	start := time.Now()

	result, err := e.run(ctx, snapshot)
	status := StatusOK
	if err != nil {
		status = StatusError
		if errors.Is(err, reports.ErrValidation) {
			status = "invalid"
		}
	}
	metrics.RecordEngineRun(status, time.Since(start))
	return result, err
}

func (e *Engine) run(ctx context.Context, snapshot *reports.Snapshot) (*Result, error) {
	if snapshot == nil {
		return nil, &reports.ValidationError{Reason: "snapshot is nil"}
	}

	analyzers := e.getAnalyzers()
	if len(analyzers) == 0 {
		return nil, fmt.Errorf("no analyzers registered")
	}

	if err := reports.Validate(snapshot, reports.ValidateOptions{StrictReferences: e.strictReferences}); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}

	clean, diagnostics := reports.Sanitize(snapshot)
	for _, d := range diagnostics {
		e.logger.Warn().
			Str("table", string(d.Table)).
			Str("record", d.RecordID).
			Str("field", d.Field).
			Msg(d.Message)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	in := &Input{
		Snapshot: clean,
		Index:    reports.NewIndex(clean),
		Config:   e.config,
		Logger:   e.logger,
	}

	results := e.runAnalyzers(ctx, analyzers, in)

	recs, reportsByAnalyzer, analyzerDiags, err := e.collect(results)
	if err != nil {
		return nil, err
	}
	diagnostics = append(diagnostics, analyzerDiags...)

	kept, conflicts := resolveConflicts(recs)
	for _, c := range conflicts {
		metrics.RecordConflict(c.WinnerClass.String(), c.LoserClass.String())
		e.logger.Debug().
			Str("target", c.Target).
			Str("winner", c.WinnerClass.String()).
			Str("loser", c.LoserClass.String()).
			Msg("conflicting recommendation dropped")
	}

	summary := buildSummary(clean, kept)
	summary.Analyzers = reportsByAnalyzer
	summary.Conflicts = conflicts
	summary.Diagnostics = diagnostics

	for kind, n := range summary.Counts {
		metrics.RecordRecommendations(kind, n)
	}
	for _, d := range diagnostics {
		metrics.RecordDiagnostic(string(d.Kind))
	}
	metrics.SetBudgetReallocated(summary.BudgetReallocated)

	e.logger.Info().
		Int("recommendations", len(kept)).
		Int("conflicts", len(conflicts)).
		Int("diagnostics", len(diagnostics)).
		Float64("expected_revenue_increase", summary.ExpectedImpact.RevenueIncrease).
		Float64("expected_spend_savings", summary.ExpectedImpact.SpendSavings).
		Msg("optimization complete")

	return &Result{Recommendations: kept, Summary: summary}, nil
}

// analyzerResult holds the outcome of a single analyzer.
type analyzerResult struct {
	name     string
	output   Output
	err      error
	duration time.Duration
}

// runAnalyzers fans out one goroutine per analyzer and waits for all.
func (e *Engine) runAnalyzers(ctx context.Context, analyzers []Analyzer, in *Input) []analyzerResult {
	results := make([]analyzerResult, len(analyzers))
	var wg sync.WaitGroup

	for i, a := range analyzers {
		wg.Add(1)
		go func(idx int, a Analyzer) {
			defer wg.Done()
			results[idx] = e.runSingleAnalyzer(ctx, a, in)
		}(i, a)
	}

	wg.Wait()
	return results
}

// runSingleAnalyzer runs one analyzer, converting a panic into an error so
// that one faulty analyzer cannot take the process down.
func (e *Engine) runSingleAnalyzer(ctx context.Context, a Analyzer, in *Input) (result analyzerResult) {
	result.name = a.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("analyzer %s panicked: %v", result.name, r)
		}
		result.duration = time.Since(start)
	}()

	local := *in
	local.Logger = in.Logger.With().Str("analyzer", result.name).Logger()
	result.output, result.err = a.Analyze(ctx, &local)
	return result
}

// collect merges analyzer results in registration order. Insufficient data
// empties that analyzer's result; any other error is fatal. Records with a
// non-finite field are suppressed.
func (e *Engine) collect(results []analyzerResult) ([]Recommendation, []AnalyzerReport, []reports.Diagnostic, error) {
	var (
		recs        []Recommendation
		diagnostics []reports.Diagnostic
	)
	analyzerReports := make([]AnalyzerReport, 0, len(results))

	for _, res := range results {
		report := AnalyzerReport{Name: res.name, Status: StatusOK}

		if res.err != nil {
			var insufficient *InsufficientDataError
			if !errors.As(res.err, &insufficient) {
				metrics.RecordAnalyzerRun(res.name, StatusError, res.duration)
				return nil, nil, nil, fmt.Errorf("analyzer %s: %w", res.name, res.err)
			}
			e.logger.Warn().
				Str("analyzer", res.name).
				Err(res.err).
				Msg("analyzer skipped")
			report.Status = StatusInsufficientData
			diagnostics = append(diagnostics, insufficient.Diagnostic())
			metrics.RecordAnalyzerRun(res.name, report.Status, res.duration)
			analyzerReports = append(analyzerReports, report)
			continue
		}

		diagnostics = append(diagnostics, res.output.Diagnostics...)
		for i := range res.output.Recommendations {
			rec := res.output.Recommendations[i]
			if diag, ok := e.screen(res.name, &rec); !ok {
				diagnostics = append(diagnostics, diag)
				continue
			}
			if e.belowConfidence(&rec) {
				continue
			}
			recs = append(recs, rec)
			report.Recommendations++
		}

		metrics.RecordAnalyzerRun(res.name, report.Status, res.duration)
		e.logger.Debug().
			Str("analyzer", res.name).
			Int("recommendations", report.Recommendations).
			Dur("duration", res.duration).
			Msg("analyzer finished")
		analyzerReports = append(analyzerReports, report)
	}

	return recs, analyzerReports, diagnostics, nil
}

// screen rejects malformed records and records carrying NaN or infinity.
func (e *Engine) screen(analyzer string, rec *Recommendation) (reports.Diagnostic, bool) {
	if !rec.payloadMatchesKind() {
		return reports.Diagnostic{
			Kind:     reports.DiagComputation,
			Analyzer: analyzer,
			RecordID: rec.ID,
			Message:  fmt.Sprintf("%s recommendation has no matching payload; suppressed", rec.Kind),
		}, false
	}
	if f, bad := rec.firstNonFinite(); bad {
		cerr := &ComputationError{
			Analyzer: analyzer,
			Table:    tableOf(rec.Kind),
			RecordID: rec.Subject(),
			Field:    f.name,
			Value:    f.value,
		}
		e.logger.Warn().Err(cerr).Msg("recommendation suppressed")
		return cerr.Diagnostic(), false
	}
	rec.Confidence = kpi.Clamp01(rec.Confidence)
	return reports.Diagnostic{}, true
}

// belowConfidence applies Config.ConfidenceLevel to evidence-based kinds.
// Pauses, budget moves and tier actions are never filtered: the first is a
// deterministic rule and the other two must stay complete sets.
func (e *Engine) belowConfidence(rec *Recommendation) bool {
	switch rec.Class() {
	case ClassKeywordAdd, ClassBidChange, ClassNegativeKeyword:
		return rec.Confidence < e.config.ConfidenceLevel
	default:
		return false
	}
}

func tableOf(k Kind) reports.Table {
	switch k {
	case KindKeywordAdd, KindNegativeKeyword:
		return reports.TableSearchTerms
	case KindBidChange:
		return reports.TableKeywords
	case KindBudgetChange:
		return reports.TableCampaigns
	case KindProductTier:
		return reports.TableProducts
	default:
		return ""
	}
}
