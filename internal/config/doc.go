// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

/*
Package config loads the application configuration for the bidwise CLI.

The engine in package recommend never reads files or the environment. This
package assembles its configuration once, validates it, and hands the
result to the command that builds the engine.

# Configuration Sources

Load layers three sources, later ones overriding earlier ones:

 1. Built-in defaults (recommend.DefaultConfig and logging.DefaultConfig)
 2. An optional YAML file
 3. Environment variables with the BIDWISE_ prefix

The YAML file is the path passed to Load (the --config flag), else the
path in BIDWISE_CONFIG_PATH, else the first of DefaultConfigPaths that
exists. An explicitly named file that does not exist is an error.

# File Layout

	logging:
	  level: debug
	  format: console
	run:
	  input: snapshot.json
	  output: recommendations.json
	  metrics_file: bidwise.prom
	  strict_references: true
	engine:
	  targets:
	    default: {target_roas: 3.0, ctr_target: 0.005}
	    brand:   {target_roas: 5.0, ctr_target: 0.01}
	  confidence_level: 0.2
	  bids:
	    change_cap: 0.25

Every key under engine mirrors the koanf tags of recommend.Config.

# Environment Variables

Only the variables listed in envMappings are read:

  - BIDWISE_LOG_LEVEL, BIDWISE_LOG_FORMAT, BIDWISE_LOG_CALLER, BIDWISE_LOG_TIMESTAMP
  - BIDWISE_INPUT, BIDWISE_OUTPUT, BIDWISE_METRICS_FILE, BIDWISE_STRICT_REFERENCES
  - BIDWISE_TARGET_ROAS, BIDWISE_CTR_TARGET (the default campaign type)
  - BIDWISE_MIN_SAMPLE_SIZE, BIDWISE_CONFIDENCE_LEVEL
  - BIDWISE_BID_CHANGE_CAP, BIDWISE_PAUSE_CLICKS, BIDWISE_REPORT_DAYS
  - BIDWISE_NEGATIVE_MIN_SPEND, BIDWISE_TIER_MODE, BIDWISE_TIER_VOLUME_METRIC
  - BIDWISE_COMPETITOR_BRANDS (comma-separated)

Other BIDWISE_ variables are ignored.
*/
package config
