// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bidwise/internal/reports"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("is valid", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("tier allocations sum to 100", func(t *testing.T) {
		var sum float64
		for _, tier := range Tiers {
			sum += cfg.TierTargets(tier).BudgetAllocation
		}
		if sum != 100 {
			t.Errorf("sum = %v, want 100", sum)
		}
	})

	t.Run("bid rules", func(t *testing.T) {
		if cfg.Bids.ChangeCap != 0.30 {
			t.Errorf("ChangeCap = %v, want 0.30", cfg.Bids.ChangeCap)
		}
		if cfg.Bids.PauseClicks != 100 || cfg.Bids.PauseConversions != 0 {
			t.Errorf("pause rule = %d/%d, want 100/0", cfg.Bids.PauseClicks, cfg.Bids.PauseConversions)
		}
	})

	t.Run("default targets", func(t *testing.T) {
		tg := cfg.TargetsFor("unknown-type")
		if tg.TargetROAS != 3.0 {
			t.Errorf("TargetROAS = %v, want 3.0", tg.TargetROAS)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name: "tier allocations not summing to 100",
			modify: func(c *Config) {
				c.Tiers.Levels["cull"] = TierTargets{BidMultiplier: 0.5, BudgetAllocation: 15}
			},
			wantError: "must sum to 100",
		},
		{
			name:      "missing tier",
			modify:    func(c *Config) { delete(c.Tiers.Levels, "worker") },
			wantError: "tiers.levels.worker is required",
		},
		{
			name: "unknown tier",
			modify: func(c *Config) {
				c.Tiers.Levels["legend"] = TierTargets{}
			},
			wantError: "not a known tier",
		},
		{
			name:      "missing default targets",
			modify:    func(c *Config) { c.Targets = map[string]Targets{"brand": {TargetROAS: 4}} },
			wantError: "targets.default is required",
		},
		{
			name:      "zero target roas",
			modify:    func(c *Config) { c.Targets["default"] = Targets{TargetROAS: 0} },
			wantError: "target_roas",
		},
		{
			name:      "change cap of one",
			modify:    func(c *Config) { c.Bids.ChangeCap = 1 },
			wantError: "change_cap",
		},
		{
			name:      "deadband wider than cap",
			modify:    func(c *Config) { c.Bids.Deadband = 0.4 },
			wantError: "deadband",
		},
		{
			name:      "all opportunity weights zero",
			modify:    func(c *Config) { c.Keywords.Weights = OpportunityWeights{} },
			wantError: "weights",
		},
		{
			name:      "max bid below min bid",
			modify:    func(c *Config) { c.Keywords.MaxBid = 0.25 },
			wantError: "max_bid",
		},
		{
			name:      "phase thresholds inverted",
			modify:    func(c *Config) { c.Budget.Phase2Confidence = 0.9 },
			wantError: "phase1_confidence",
		},
		{
			name:      "confidence level above one",
			modify:    func(c *Config) { c.ConfidenceLevel = 1.5 },
			wantError: "confidence_level",
		},
		{
			name:      "unknown tier mode",
			modify:    func(c *Config) { c.Tiers.Mode = "quantile" },
			wantError: "mode",
		},
		{
			name:      "empty theme lexicon",
			modify:    func(c *Config) { c.Negatives.Themes["empty"] = nil },
			wantError: "negatives.themes.empty",
		},
		{
			name:      "zero report days",
			modify:    func(c *Config) { c.Budget.ReportDays = 0 },
			wantError: "report_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.wantError)
			}
		})
	}
}

func TestConfig_ValidateToleratesRounding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiers.Levels["star"] = TierTargets{BidMultiplier: 1.2, BudgetAllocation: 33.3333333}
	cfg.Tiers.Levels["potential"] = TierTargets{BidMultiplier: 1.15, BudgetAllocation: 33.3333333}
	cfg.Tiers.Levels["worker"] = TierTargets{BidMultiplier: 0.9, BudgetAllocation: 23.3333334}
	cfg.Tiers.Levels["cull"] = TierTargets{BidMultiplier: 0.5, BudgetAllocation: 10}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.Targets["brand"] = Targets{TargetROAS: 5}
	clone.Negatives.Themes["free"][0] = "changed"
	clone.Negatives.Stopwords[0] = "changed"
	clone.Tiers.Levels["star"] = TierTargets{}
	clone.Bids.ChangeCap = 0.1

	if _, ok := original.Targets["brand"]; ok {
		t.Error("Targets map shared with clone")
	}
	if original.Negatives.Themes["free"][0] == "changed" {
		t.Error("theme lexicon shared with clone")
	}
	if original.Negatives.Stopwords[0] == "changed" {
		t.Error("stopwords shared with clone")
	}
	if original.Tiers.Levels["star"].BidMultiplier != 1.2 {
		t.Error("tier levels shared with clone")
	}
	if original.Bids.ChangeCap != 0.30 {
		t.Error("scalar field shared with clone")
	}
}

func TestConfig_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("decoded config Validate() = %v, want nil", err)
	}
	if decoded.TargetsFor(reports.DefaultCampaignType).TargetROAS != 3.0 {
		t.Error("default target lost in round trip")
	}
}
