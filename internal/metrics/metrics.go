// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation of optimization runs:
// - engine runs and their latency
// - per-analyzer latency and outcome
// - recommendations emitted, conflicts resolved, diagnostics raised

var (
	// Engine Metrics
	EngineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidwise_engine_runs_total",
			Help: "Total number of optimization runs by outcome",
		},
		[]string{"status"}, // "ok", "invalid", "error"
	)

	EngineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bidwise_engine_run_duration_seconds",
			Help:    "Duration of optimization runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Analyzer Metrics
	AnalyzerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bidwise_analyzer_duration_seconds",
			Help:    "Duration of a single analyzer in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"analyzer"},
	)

	AnalyzerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidwise_analyzer_runs_total",
			Help: "Total number of analyzer executions by outcome",
		},
		[]string{"analyzer", "status"}, // "ok", "insufficient_data", "error"
	)

	// Output Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidwise_recommendations_total",
			Help: "Total number of recommendations emitted by kind",
		},
		[]string{"kind"},
	)

	ConflictsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidwise_conflicts_dropped_total",
			Help: "Total number of recommendations dropped by precedence",
		},
		[]string{"winner", "loser"},
	)

	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidwise_diagnostics_total",
			Help: "Total number of diagnostics raised by kind",
		},
		[]string{"kind"}, // "computation", "insufficient_data", "orphan", "inconsistent"
	)

	BudgetReallocated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bidwise_budget_reallocated_dollars",
			Help: "Daily budget moved between campaigns by the last run",
		},
	)
)

// RecordEngineRun records the outcome and latency of one optimization run
func RecordEngineRun(status string, duration time.Duration) {
	EngineRunsTotal.WithLabelValues(status).Inc()
	EngineRunDuration.Observe(duration.Seconds())
}

// RecordAnalyzerRun records one analyzer execution
func RecordAnalyzerRun(analyzer, status string, duration time.Duration) {
	AnalyzerRunsTotal.WithLabelValues(analyzer, status).Inc()
	AnalyzerDuration.WithLabelValues(analyzer).Observe(duration.Seconds())
}

// RecordRecommendations adds n emitted recommendations of a kind
func RecordRecommendations(kind string, n int) {
	if n <= 0 {
		return
	}
	RecommendationsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordConflict records a recommendation dropped by precedence
func RecordConflict(winner, loser string) {
	ConflictsDroppedTotal.WithLabelValues(winner, loser).Inc()
}

// RecordDiagnostic records a diagnostic raised during a run
func RecordDiagnostic(kind string) {
	DiagnosticsTotal.WithLabelValues(kind).Inc()
}

// SetBudgetReallocated publishes the budget moved by the last run
func SetBudgetReallocated(dollars float64) {
	BudgetReallocated.Set(dollars)
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for collection by the node exporter textfile collector.
// The file is written atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
