// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/reports"
)

// KeywordExpansion mines search terms that no keyword targets yet and
// proposes them as new keywords.
//
// Terms are aggregated per campaign and normalized text. A candidate is
// kept when it converts, or when it has enough impressions and beats the
// campaign type's CTR target. The opportunity score is a weighted mean of
// saturated components:
//
//	score = 100 * sum(w_i * n_i) / sum(w_i)
//
// where n_i are conversion rate, CTR, unclaimed market share and spend,
// each scaled into [0,1] by its saturation point.
type KeywordExpansion struct {
	recommend.BaseAnalyzer
}

// NewKeywordExpansion creates the keyword expansion analyzer.
func NewKeywordExpansion() *KeywordExpansion {
	return &KeywordExpansion{BaseAnalyzer: recommend.NewBaseAnalyzer(NameKeywordExpansion)}
}

// termAggregate sums every row of one search term within one campaign.
type termAggregate struct {
	campaign *reports.CampaignRecord
	text     string
	perf     reports.Performance

	// Impression-weighted supplier share, with a plain mean fallback.
	shareWeighted float64
	shareSum      float64
	rows          int
}

func (a *termAggregate) add(t *reports.SearchTermRecord) {
	a.perf = a.perf.Add(t.Performance)
	a.shareWeighted += t.SupplierShare * float64(t.Impressions)
	a.shareSum += t.SupplierShare
	a.rows++
}

func (a *termAggregate) supplierShare() float64 {
	if a.perf.Impressions > 0 {
		return a.shareWeighted / float64(a.perf.Impressions)
	}
	return kpi.SafeDiv(a.shareSum, float64(a.rows))
}

type keywordCandidate struct {
	rec   recommend.Recommendation
	score float64
	spend float64
	key   string
}

// Analyze implements recommend.Analyzer.
func (k *KeywordExpansion) Analyze(_ context.Context, in *recommend.Input) (recommend.Output, error) {
	terms := in.Snapshot.SearchTerms
	if len(terms) == 0 {
		return recommend.Output{}, k.InsufficientData(reports.TableSearchTerms, 0, 1)
	}

	var out recommend.Output
	aggregates := make(map[string]*termAggregate)
	var keys []string

	for i := range terms {
		t := &terms[i]
		if t.KeywordID != "" {
			if _, mapped := in.Index.Keyword(t.KeywordID); mapped {
				continue
			}
		}
		c, ok := in.Index.Campaign(t.CampaignID)
		if !ok {
			out.Diagnostics = append(out.Diagnostics, k.Orphan(reports.TableSearchTerms, t.Term, t.CampaignID))
			continue
		}
		text := reports.NormalizeText(t.Term)
		if text == "" {
			continue
		}

		key := c.ID + "\x00" + text
		agg, seen := aggregates[key]
		if !seen {
			agg = &termAggregate{campaign: c, text: text}
			aggregates[key] = agg
			keys = append(keys, key)
		}
		agg.add(t)
	}

	cfg := &in.Config.Keywords
	candidates := make([]keywordCandidate, 0, len(keys))
	for _, key := range keys {
		agg := aggregates[key]
		if !k.retain(in.Config, agg) {
			continue
		}

		exists, exact := in.Index.KeywordText(agg.campaign.ID, agg.text)
		if exact {
			continue
		}
		matchType := reports.MatchPhrase
		if exists {
			matchType = reports.MatchExact
		}

		score := opportunityScore(cfg, agg)
		bid := suggestedBid(in.Config, agg)
		rec := recommend.NewKeywordAdd(recommend.KeywordAdd{
			Text:             agg.text,
			MatchType:        matchType,
			CampaignID:       agg.campaign.ID,
			SuggestedBid:     bid,
			OpportunityScore: score,
		},
			confidence(agg.perf.Clicks, cfg.ConfidenceClicks),
			recommend.Impact{RevenueIncrease: kpi.Round2(agg.perf.Revenue * cfg.CaptureRate)},
			fmt.Sprintf("untargeted term: %d clicks, %d conversions, CTR %.2f%%, conversion rate %.1f%%",
				agg.perf.Clicks, agg.perf.Conversions, agg.perf.CTR()*100, agg.perf.ConversionRate()*100),
		)
		candidates = append(candidates, keywordCandidate{rec: rec, score: score, spend: agg.perf.Spend, key: key})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.spend != b.spend {
			return a.spend > b.spend
		}
		return a.key < b.key
	})

	if len(candidates) > cfg.MaxCandidates {
		candidates = candidates[:cfg.MaxCandidates]
	}
	for i := range candidates {
		out.Recommendations = append(out.Recommendations, candidates[i].rec)
	}

	in.Logger.Debug().
		Int("terms", len(keys)).
		Int("candidates", len(out.Recommendations)).
		Msg("keyword expansion complete")

	return out, nil
}

// retain applies the candidate thresholds. Terms with spend but no clicks
// never qualify.
func (k *KeywordExpansion) retain(cfg *recommend.Config, agg *termAggregate) bool {
	p := &agg.perf
	if p.Clicks == 0 || p.Clicks < cfg.Keywords.MinClicks {
		return false
	}
	if p.Conversions >= cfg.Keywords.MinConversions {
		return true
	}
	targets := cfg.TargetsFor(agg.campaign.TypeKey())
	return p.Impressions >= cfg.Keywords.MinImpressions && p.CTR() > targets.CTRTarget
}

func opportunityScore(cfg *recommend.KeywordConfig, agg *termAggregate) float64 {
	w := cfg.Weights
	components := []struct {
		weight, value float64
	}{
		{w.ConversionRate, kpi.Clamp01(kpi.SafeDiv(agg.perf.ConversionRate(), cfg.ConversionRateSaturation))},
		{w.CTR, kpi.Clamp01(kpi.SafeDiv(agg.perf.CTR(), cfg.CTRSaturation))},
		{w.SupplierShare, kpi.Clamp01((100 - agg.supplierShare()) / 100)},
		{w.Spend, kpi.Clamp01(kpi.SafeDiv(agg.perf.Spend, cfg.SpendSaturation))},
	}

	var sum float64
	for _, c := range components {
		sum += c.weight * c.value
	}
	return kpi.Round2(100 * kpi.SafeDiv(sum, w.Sum()))
}

// suggestedBid scales the average order value to the cost per click that
// hits the target ROAS. Terms without conversions get a seed bid from the
// campaign's average CPC.
func suggestedBid(cfg *recommend.Config, agg *termAggregate) float64 {
	kc := &cfg.Keywords
	var bid float64
	switch {
	case agg.perf.Conversions > 0:
		aov := agg.perf.Revenue / float64(agg.perf.Conversions)
		target := cfg.TargetsFor(agg.campaign.TypeKey()).TargetROAS
		bid = aov * kpi.SafeDiv(agg.perf.ConversionRate(), target)
	case agg.campaign.Clicks > 0:
		bid = agg.campaign.CPC() * kc.SeedBidFactor
	default:
		bid = kc.DefaultSeedBid
	}
	return kpi.Round2(kpi.Clamp(bid, kc.MinBid, kc.MaxBid))
}
