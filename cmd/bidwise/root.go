// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/bidwise/internal/config"
)

// Build information, set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bidwise",
		Short: "Sponsored products optimization engine",
		Long: `bidwise turns advertising performance reports into optimization
recommendations: keywords to add, bids to change, budgets to move,
negative keywords to apply and product tier actions.

Examples:
  bidwise optimize --input snapshot.json --output out.json
  bidwise config --config bidwise.yaml
  bidwise version`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file (default: $"+config.ConfigPathEnvVar+" or ./bidwise.yaml)")

	cmd.AddCommand(
		newOptimizeCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
