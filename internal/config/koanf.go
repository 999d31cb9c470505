// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/bidwise/internal/logging"
	"github.com/tomtom215/bidwise/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"bidwise.yaml",
	"bidwise.yml",
	"/etc/bidwise/config.yaml",
	"/etc/bidwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "BIDWISE_CONFIG_PATH"

// envPrefix is the prefix of every environment variable Load reads.
const envPrefix = "BIDWISE_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Run: RunConfig{
			Input:            "-",
			Output:           "-",
			StrictReferences: true,
		},
		Engine: *recommend.DefaultConfig(),
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file
//  3. Environment Variables: Override any mapped setting
//
// path names the config file explicitly; when empty the file is located
// through ConfigPathEnvVar and DefaultConfigPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BIDWISE_BID_CHANGE_CAP -> engine.bids.change_cap
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Logging.Output = os.Stderr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the config file path. An explicit path, from the
// argument or the environment, must exist; the default paths are optional.
func findConfigFile(path string) (string, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"engine.negatives.competitor_brands",
	"engine.negatives.stopwords",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"bidwise_log_level":     "logging.level",
	"bidwise_log_format":    "logging.format",
	"bidwise_log_caller":    "logging.caller",
	"bidwise_log_timestamp": "logging.timestamp",

	"bidwise_input":             "run.input",
	"bidwise_output":            "run.output",
	"bidwise_metrics_file":      "run.metrics_file",
	"bidwise_strict_references": "run.strict_references",

	"bidwise_target_roas":        "engine.targets.default.target_roas",
	"bidwise_ctr_target":         "engine.targets.default.ctr_target",
	"bidwise_min_sample_size":    "engine.min_sample_size",
	"bidwise_confidence_level":   "engine.confidence_level",
	"bidwise_bid_change_cap":     "engine.bids.change_cap",
	"bidwise_pause_clicks":       "engine.bids.pause_clicks",
	"bidwise_report_days":        "engine.budget.report_days",
	"bidwise_negative_min_spend": "engine.negatives.min_spend",
	"bidwise_tier_mode":          "engine.tiers.mode",
	"bidwise_tier_volume_metric": "engine.tiers.volume_metric",
	"bidwise_competitor_brands":  "engine.negatives.competitor_brands",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped names return "" and are skipped by the provider.
//
// Examples:
//   - BIDWISE_LOG_LEVEL -> logging.level
//   - BIDWISE_BID_CHANGE_CAP -> engine.bids.change_cap
//   - BIDWISE_CONFIG_PATH -> "" (read by findConfigFile)
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
