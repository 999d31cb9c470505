// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package main is the entry point for the bidwise command.
//
// bidwise reads one advertising-performance snapshot (campaigns, keywords,
// search terms and products as JSON), runs the recommendation engine over
// it and writes the recommendations with their summary as a JSON envelope.
//
// # Commands
//
//	bidwise optimize   Run the engine over one snapshot
//	bidwise config     Print the effective configuration as JSON
//	bidwise version    Print build information
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Command-line flags
//   - Environment variables (BIDWISE_*)
//   - Config file (--config, BIDWISE_CONFIG_PATH or ./bidwise.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	bidwise optimize --input snapshot.json --output recommendations.json
//	BIDWISE_BID_CHANGE_CAP=0.2 bidwise optimize < snapshot.json > out.json
//	bidwise optimize --config bidwise.yaml --metrics-file /var/lib/node_exporter/bidwise.prom
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run before the analyzers start; a run in
// progress finishes and nothing is written.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
