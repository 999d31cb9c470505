// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package analyzers implements the recommendation analyzers run by the
// optimization engine.
//
// Each analyzer implements the recommend.Analyzer interface and can be
// registered with the engine.
//
// # Analyzers
//
//   - Keyword expansion: untargeted search terms worth bidding on
//   - Bid optimization: bid adjustments and pauses for existing keywords
//   - Budget allocation: daily budget moved from weak to capped campaigns
//   - Negative keywords: wasteful search terms grouped by theme
//   - Product tiers: star/potential/worker/cull quadrants with guidance
//
// # Thread Safety
//
// Analyzers hold no mutable state. The engine runs them concurrently on
// one read-only recommend.Input, and every analyzer returns its output in
// a total order so that repeated runs are identical.
package analyzers

import (
	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/recommend"
)

// Analyzer names. They appear in logs, metrics and the run summary.
const (
	NameKeywordExpansion = "keyword_expansion"
	NameBidOptimization  = "bid_optimization"
	NameBudgetAllocation = "budget_allocation"
	NameNegativeKeywords = "negative_keywords"
	NameProductTiers     = "product_tiers"
)

// All returns every analyzer in registration order. The negative keyword
// generator gets a LexiconClassifier built from cfg.
func All(cfg *recommend.Config) []recommend.Analyzer {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	return []recommend.Analyzer{
		NewKeywordExpansion(),
		NewBidOptimizer(),
		NewBudgetAllocator(),
		NewNegativeKeywords(NewLexiconClassifierFromConfig(&cfg.Negatives)),
		NewProductTiers(),
	}
}

// Register adds every analyzer to the engine.
func Register(e *recommend.Engine) {
	for _, a := range All(e.Config()) {
		e.Register(a)
	}
}

// confidence is the saturating evidence curve shared by the analyzers,
// rounded so that it serializes identically across runs.
func confidence(clicks int64, halfPoint float64) float64 {
	return kpi.Round4(kpi.Saturation(float64(clicks), halfPoint))
}
