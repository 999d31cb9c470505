// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/bidwise/internal/config"
	"github.com/tomtom215/bidwise/internal/export"
	"github.com/tomtom215/bidwise/internal/logging"
	"github.com/tomtom215/bidwise/internal/metrics"
	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/recommend/analyzers"
	"github.com/tomtom215/bidwise/internal/reports"
)

type optimizeOptions struct {
	input            string
	output           string
	metricsFile      string
	strictReferences bool
}

func newOptimizeCmd(root *rootOptions) *cobra.Command {
	opts := &optimizeOptions{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Analyze one snapshot and write recommendations",
		Long: `Runs every analyzer over a JSON snapshot and writes the recommendation
envelope {run_id, generated_at, recommendations, summary}.

Invalid input (missing ids, impossible funnels, unknown campaigns in strict
mode, an invalid configuration) aborts the run and nothing is written.

Examples:
  bidwise optimize --input snapshot.json
  bidwise optimize --input - --output out.json --strict-references=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg.Run)
			logging.Init(cfg.Logging)
			return runOptimize(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", `Snapshot JSON file ("-" for stdin)`)
	f.StringVarP(&opts.output, "output", "o", "", `Output file ("-" for stdout)`)
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	f.BoolVar(&opts.strictReferences, "strict-references", true, "Fail on search terms or keywords referencing unknown campaigns")
	return cmd
}

// apply overrides the loaded run settings with flags set on the command line.
func (o *optimizeOptions) apply(cmd *cobra.Command, run *config.RunConfig) {
	f := cmd.Flags()
	if f.Changed("input") {
		run.Input = o.input
	}
	if f.Changed("output") {
		run.Output = o.output
	}
	if f.Changed("metrics-file") {
		run.MetricsFile = o.metricsFile
	}
	if f.Changed("strict-references") {
		run.StrictReferences = o.strictReferences
	}
}

func runOptimize(cmd *cobra.Command, cfg *config.Config) error {
	ctx, runID := logging.StartRun(cmd.Context(), "cli")
	log := logging.Ctx(ctx)

	snapshot, err := readSnapshot(cmd, cfg.Run.Input)
	if err != nil {
		return err
	}
	log.Info().
		Int("campaigns", len(snapshot.Campaigns)).
		Int("keywords", len(snapshot.Keywords)).
		Int("search_terms", len(snapshot.SearchTerms)).
		Int("products", len(snapshot.Products)).
		Msg("snapshot loaded")

	engine, err := recommend.NewEngine(&cfg.Engine,
		logging.ForRun(runID),
		recommend.WithStrictReferences(cfg.Run.StrictReferences))
	if err != nil {
		return err
	}
	analyzers.Register(engine)

	result, runErr := engine.Run(ctx, snapshot)
	if err := writeMetrics(cfg.Run.MetricsFile); err != nil {
		log.Warn().Err(err).Msg("metrics not written")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("optimization failed")
		return runErr
	}

	env := export.NewEnvelope(runID, time.Now(), result)
	if err := writeEnvelope(cmd, cfg.Run.Output, env); err != nil {
		return err
	}
	log.Info().
		Int("recommendations", len(result.Recommendations)).
		Str("output", cfg.Run.Output).
		Msg("recommendations written")
	return nil
}

func readSnapshot(cmd *cobra.Command, input string) (*reports.Snapshot, error) {
	switch input {
	case "":
		return nil, fmt.Errorf("no input: set --input, run.input or BIDWISE_INPUT")
	case "-":
		return reports.DecodeSnapshot(cmd.InOrStdin())
	default:
		return reports.LoadSnapshotFile(input)
	}
}

//nolint:gocritic // Envelope passed by value mirrors export.NewEnvelope's return
func writeEnvelope(cmd *cobra.Command, output string, env export.Envelope) error {
	if output == "" || output == "-" {
		return export.Write(cmd.OutOrStdout(), env)
	}
	return export.WriteFile(output, env)
}

func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	return metrics.WriteTextfile(path)
}
