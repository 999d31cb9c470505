// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"testing"
)

func TestBuildSummary(t *testing.T) {
	recs := []Recommendation{
		NewKeywordAdd(KeywordAdd{CampaignID: "c1", Text: "sofa bed"}, 1, Impact{RevenueIncrease: 20}, ""),
		NewBidChange(BidChange{KeywordID: "k1", OldBid: 1, Reason: BidPause}, 1, Impact{SpendSavings: 10}, ""),
		NewBidChange(BidChange{KeywordID: "k2", OldBid: 1, NewBid: 0.8, Reason: BidDecrease}, 1, Impact{SpendSavings: 5}, ""),
		NewNegativeKeyword(NegativeKeyword{Text: "free", Scope: ScopeAccount}, 1, Impact{SpendSavings: 5}, ""),
		NewBudgetChange(BudgetChange{CampaignID: "c1", Delta: 10}, 1, Impact{}, ""),
		NewBudgetChange(BudgetChange{CampaignID: "c2", Delta: -10}, 1, Impact{}, ""),
		NewProductTier(ProductTierAction{SKU: "S1"}, 1, Impact{RevenueIncrease: 30}, ""),
	}

	sum := buildSummary(testSnapshot(), recs)

	t.Run("current state", func(t *testing.T) {
		cs := sum.CurrentState
		if cs.Campaigns != 1 || cs.Clicks != 100 || cs.Spend != 100 || cs.Revenue != 300 {
			t.Errorf("CurrentState = %+v", cs)
		}
		if cs.ROAS != 3 {
			t.Errorf("ROAS = %v, want 3", cs.ROAS)
		}
		if cs.CTR != 0.1 || cs.ConversionRate != 0.1 {
			t.Errorf("CTR/ConversionRate = %v/%v, want 0.1/0.1", cs.CTR, cs.ConversionRate)
		}
	})

	t.Run("counts", func(t *testing.T) {
		want := map[string]int{
			"keyword_add":      1,
			"bid_change":       2,
			"budget_change":    2,
			"negative_keyword": 1,
			"product_tier":     1,
		}
		for kind, n := range want {
			if sum.Counts[kind] != n {
				t.Errorf("Counts[%s] = %d, want %d", kind, sum.Counts[kind], n)
			}
		}
		if sum.Pauses != 1 {
			t.Errorf("Pauses = %d, want 1", sum.Pauses)
		}
	})

	t.Run("expected impact", func(t *testing.T) {
		want := ExpectedImpact{
			RevenueIncrease: 50,
			SpendSavings:    15,
			BidSavings:      5,
			ProjectedROAS:   4.375,
		}
		if sum.ExpectedImpact != want {
			t.Errorf("ExpectedImpact = %+v, want %+v", sum.ExpectedImpact, want)
		}
		if sum.BudgetReallocated != 10 {
			t.Errorf("BudgetReallocated = %v, want 10", sum.BudgetReallocated)
		}
	})
}

func TestBuildSummary_Empty(t *testing.T) {
	sum := buildSummary(testSnapshot(), nil)

	for _, k := range Kinds {
		n, ok := sum.Counts[k.String()]
		if !ok || n != 0 {
			t.Errorf("Counts[%s] = %d (present %v), want 0", k, n, ok)
		}
	}
	if sum.ExpectedImpact.ProjectedROAS != 3 {
		t.Errorf("ProjectedROAS = %v, want current ROAS 3", sum.ExpectedImpact.ProjectedROAS)
	}
}

func TestBuildSummary_SavingsExceedSpend(t *testing.T) {
	recs := []Recommendation{
		NewBidChange(BidChange{KeywordID: "k1", OldBid: 1, Reason: BidPause}, 1, Impact{SpendSavings: 500}, ""),
	}

	sum := buildSummary(testSnapshot(), recs)
	if sum.ExpectedImpact.ProjectedROAS != 0 {
		t.Errorf("ProjectedROAS = %v, want 0 when projected spend is zero", sum.ExpectedImpact.ProjectedROAS)
	}
}
