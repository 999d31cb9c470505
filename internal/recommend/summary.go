// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/reports"
)

// Summary aggregates the account's current state and the expected effect
// of the emitted recommendations.
type Summary struct {
	CurrentState      CurrentState         `json:"current_state"`
	Counts            map[string]int       `json:"recommendation_counts"`
	Pauses            int                  `json:"pauses"`
	ExpectedImpact    ExpectedImpact       `json:"expected_impact"`
	BudgetReallocated float64              `json:"budget_reallocated"`
	Analyzers         []AnalyzerReport     `json:"analyzers"`
	Conflicts         []Conflict           `json:"conflicts"`
	Diagnostics       []reports.Diagnostic `json:"diagnostics"`
}

// CurrentState is the account-level view of the input snapshot.
type CurrentState struct {
	Campaigns      int     `json:"campaigns"`
	Keywords       int     `json:"keywords"`
	SearchTerms    int     `json:"search_terms"`
	Products       int     `json:"products"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	Spend          float64 `json:"spend"`
	Revenue        float64 `json:"revenue"`
	ROAS           float64 `json:"roas"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ExpectedImpact is the simulated effect of applying every recommendation.
type ExpectedImpact struct {
	// RevenueIncrease sums keyword-add capture and tier uplift estimates.
	RevenueIncrease float64 `json:"revenue_increase"`
	// SpendSavings sums paused keyword spend and negative keyword spend.
	SpendSavings float64 `json:"spend_savings"`
	// BidSavings is the spend avoided by bid decreases, reported apart
	// from SpendSavings.
	BidSavings    float64 `json:"bid_savings"`
	ProjectedROAS float64 `json:"projected_roas"`
}

// AnalyzerReport records how one analyzer fared in the run.
type AnalyzerReport struct {
	Name            string `json:"name"`
	Status          string `json:"status"`
	Recommendations int    `json:"recommendations"`
}

// Analyzer run statuses.
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
	StatusError            = "error"
)

func currentState(s *reports.Snapshot) CurrentState {
	total := s.Totals()
	return CurrentState{
		Campaigns:      len(s.Campaigns),
		Keywords:       len(s.Keywords),
		SearchTerms:    len(s.SearchTerms),
		Products:       len(s.Products),
		Impressions:    total.Impressions,
		Clicks:         total.Clicks,
		Conversions:    total.Conversions,
		Spend:          kpi.Round2(total.Spend),
		Revenue:        kpi.Round2(total.Revenue),
		ROAS:           kpi.Round4(total.ROAS()),
		CTR:            kpi.Round4(total.CTR()),
		ConversionRate: kpi.Round4(total.ConversionRate()),
	}
}

// buildSummary simulates the kept recommendations against the snapshot.
func buildSummary(s *reports.Snapshot, recs []Recommendation) Summary {
	sum := Summary{
		CurrentState: currentState(s),
		Counts:       make(map[string]int, len(Kinds)),
	}
	for _, k := range Kinds {
		sum.Counts[k.String()] = 0
	}

	var revenue, savings, bidSavings, reallocated float64
	for i := range recs {
		r := &recs[i]
		sum.Counts[r.Kind.String()]++

		switch r.Kind {
		case KindKeywordAdd, KindProductTier:
			revenue += r.Impact.RevenueIncrease
		case KindNegativeKeyword:
			savings += r.Impact.SpendSavings
		case KindBidChange:
			if r.IsPause() {
				sum.Pauses++
				savings += r.Impact.SpendSavings
			} else {
				bidSavings += r.Impact.SpendSavings
			}
		case KindBudgetChange:
			if d := r.BudgetChange.Delta; d > 0 {
				reallocated += d
			}
		}
	}

	total := s.Totals()
	projectedSpend := total.Spend - savings - bidSavings
	if projectedSpend < 0 {
		projectedSpend = 0
	}

	sum.ExpectedImpact = ExpectedImpact{
		RevenueIncrease: kpi.Round2(revenue),
		SpendSavings:    kpi.Round2(savings),
		BidSavings:      kpi.Round2(bidSavings),
		ProjectedROAS:   kpi.Round4(kpi.ROAS(projectedSpend, total.Revenue+revenue)),
	}
	sum.BudgetReallocated = kpi.Round2(reallocated)
	return sum
}
