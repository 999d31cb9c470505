// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/reports"
)

// newInput builds the shared analyzer input the way the engine does.
func newInput(s *reports.Snapshot, mutate func(*recommend.Config)) *recommend.Input {
	cfg := recommend.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return &recommend.Input{
		Snapshot: s,
		Index:    reports.NewIndex(s),
		Config:   cfg,
		Logger:   zerolog.Nop(),
	}
}

func perf(impressions, clicks, conversions int64, spend, revenue float64) reports.Performance {
	return reports.Performance{
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Spend:       spend,
		Revenue:     revenue,
	}
}

func campaign(id string, budget float64, p reports.Performance) reports.CampaignRecord {
	return reports.CampaignRecord{
		ID:          id,
		Name:        "Campaign " + id,
		Status:      reports.StatusActive,
		DailyBudget: budget,
		Performance: p,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAll(t *testing.T) {
	want := []string{
		NameKeywordExpansion,
		NameBidOptimization,
		NameBudgetAllocation,
		NameNegativeKeywords,
		NameProductTiers,
	}

	all := All(nil)
	if len(all) != len(want) {
		t.Fatalf("len(All()) = %d, want %d", len(all), len(want))
	}
	for i, a := range all {
		if a.Name() != want[i] {
			t.Errorf("All()[%d].Name() = %q, want %q", i, a.Name(), want[i])
		}
	}
}

func TestRegister(t *testing.T) {
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	Register(engine)

	if got := len(engine.Analyzers()); got != 5 {
		t.Errorf("registered analyzers = %d, want 5", got)
	}
}

func TestAnalyzers_EmptyTables(t *testing.T) {
	tests := []struct {
		analyzer recommend.Analyzer
		table    reports.Table
	}{
		{NewKeywordExpansion(), reports.TableSearchTerms},
		{NewBidOptimizer(), reports.TableKeywords},
		{NewBudgetAllocator(), reports.TableCampaigns},
		{NewNegativeKeywords(nil), reports.TableSearchTerms},
		{NewProductTiers(), reports.TableProducts},
	}

	for _, tt := range tests {
		t.Run(tt.analyzer.Name(), func(t *testing.T) {
			out, err := tt.analyzer.Analyze(context.Background(), newInput(&reports.Snapshot{}, nil))
			if !errors.Is(err, recommend.ErrInsufficientData) {
				t.Fatalf("Analyze() error = %v, want ErrInsufficientData", err)
			}
			var ide *recommend.InsufficientDataError
			if !errors.As(err, &ide) {
				t.Fatalf("error type = %T, want *InsufficientDataError", err)
			}
			if ide.Table != tt.table {
				t.Errorf("Table = %q, want %q", ide.Table, tt.table)
			}
			if ide.Analyzer != tt.analyzer.Name() {
				t.Errorf("Analyzer = %q, want %q", ide.Analyzer, tt.analyzer.Name())
			}
			if len(out.Recommendations) != 0 {
				t.Errorf("got %d recommendations, want 0", len(out.Recommendations))
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		clicks int64
		k      float64
		want   float64
	}{
		{0, 20, 0},
		{20, 20, 0.5},
		{100, 50, 0.6667},
		{60, 20, 0.75},
	}
	for _, tt := range tests {
		if got := confidence(tt.clicks, tt.k); got != tt.want {
			t.Errorf("confidence(%d, %v) = %v, want %v", tt.clicks, tt.k, got, tt.want)
		}
	}
}
