// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package config

import (
	"fmt"

	"github.com/tomtom215/bidwise/internal/logging"
	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	Logging logging.Config   `koanf:"logging" json:"logging"`
	Run     RunConfig        `koanf:"run" json:"run"`
	Engine  recommend.Config `koanf:"engine" json:"engine"`
}

// RunConfig holds the settings of one optimization run.
type RunConfig struct {
	// Input is the JSON snapshot to analyze. "-" reads standard input.
	Input string `koanf:"input" json:"input"`

	// Output is where the recommendation envelope is written. Empty or "-"
	// writes standard output.
	Output string `koanf:"output" json:"output"`

	// MetricsFile, when set, receives the run metrics in the Prometheus
	// text exposition format.
	MetricsFile string `koanf:"metrics_file" json:"metrics_file"`

	// StrictReferences makes unresolved campaign references fatal.
	StrictReferences bool `koanf:"strict_references" json:"strict_references"`
}

// Validate checks the logging settings and the engine configuration.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(&c.Logging); verr != nil {
		return fmt.Errorf("logging: %w", verr)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
