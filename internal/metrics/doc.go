// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

/*
Package metrics provides Prometheus instrumentation for optimization runs.

Collectors are registered on the default registry through promauto. The
engine only calls the Record* helpers; the CLI exports the registry with
WriteTextfile after a run, since a one-shot process has no /metrics endpoint
to scrape.

# Available Metrics

  - bidwise_engine_runs_total{status}
  - bidwise_engine_run_duration_seconds
  - bidwise_analyzer_duration_seconds{analyzer}
  - bidwise_analyzer_runs_total{analyzer,status}
  - bidwise_recommendations_total{kind}
  - bidwise_conflicts_dropped_total{winner,loser}
  - bidwise_diagnostics_total{kind}
  - bidwise_budget_reallocated_dollars
*/
package metrics
