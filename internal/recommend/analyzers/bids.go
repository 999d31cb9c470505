// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/reports"
)

// BidOptimizer moves keyword bids toward the campaign type's target ROAS.
//
// A keyword that has burned through the pause threshold without converting
// is paused (new bid 0). A converting keyword gets
//
//	target_bid = current_bid * target_roas / actual_roas
//
// limited to whole cents inside [current*(1-cap), current*(1+cap)].
// Changes smaller than the deadband are not worth the churn and are
// dropped. Keywords with neither conversions nor enough clicks produce
// nothing.
type BidOptimizer struct {
	recommend.BaseAnalyzer
}

// NewBidOptimizer creates the bid optimization analyzer.
func NewBidOptimizer() *BidOptimizer {
	return &BidOptimizer{BaseAnalyzer: recommend.NewBaseAnalyzer(NameBidOptimization)}
}

// Analyze implements recommend.Analyzer.
func (b *BidOptimizer) Analyze(_ context.Context, in *recommend.Input) (recommend.Output, error) {
	keywords := in.Snapshot.Keywords
	if len(keywords) == 0 {
		return recommend.Output{}, b.InsufficientData(reports.TableKeywords, 0, 1)
	}

	order := make([]int, len(keywords))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keywords[order[i]].ID < keywords[order[j]].ID
	})

	cfg := &in.Config.Bids
	var out recommend.Output
	var pauses int

	for _, i := range order {
		kw := &keywords[i]
		c, ok := in.Index.Campaign(kw.CampaignID)
		if !ok {
			out.Diagnostics = append(out.Diagnostics, b.Orphan(reports.TableKeywords, kw.ID, kw.CampaignID))
			continue
		}

		if kw.Clicks > cfg.PauseClicks && kw.Conversions <= cfg.PauseConversions {
			out.Recommendations = append(out.Recommendations, b.pause(kw))
			pauses++
			continue
		}

		if kw.Conversions == 0 {
			continue
		}
		if kw.CurrentBid <= 0 {
			out.Diagnostics = append(out.Diagnostics,
				b.Skipped(reports.TableKeywords, kw.ID, "current bid is not positive; no adjustment computed"))
			continue
		}
		roas := kw.ROAS()
		if roas <= 0 {
			continue
		}

		target := in.Config.TargetsFor(c.TypeKey()).TargetROAS
		if rec, changed := b.adjust(cfg, kw, roas, target); changed {
			out.Recommendations = append(out.Recommendations, rec)
		}
	}

	in.Logger.Debug().
		Int("keywords", len(keywords)).
		Int("pauses", pauses).
		Int("changes", len(out.Recommendations)-pauses).
		Msg("bid optimization complete")

	return out, nil
}

func (b *BidOptimizer) pause(kw *reports.KeywordRecord) recommend.Recommendation {
	return recommend.NewBidChange(recommend.BidChange{
		KeywordID:   kw.ID,
		CampaignID:  kw.CampaignID,
		KeywordText: kw.Text,
		OldBid:      kw.CurrentBid,
		NewBid:      0,
		Reason:      recommend.BidPause,
	},
		1.0,
		recommend.Impact{SpendSavings: kpi.Round2(kw.Spend)},
		fmt.Sprintf("%d clicks and %d conversions; $%.2f spent without return", kw.Clicks, kw.Conversions, kw.Spend),
	)
}

func (b *BidOptimizer) adjust(cfg *recommend.BidConfig, kw *reports.KeywordRecord, roas, target float64) (recommend.Recommendation, bool) {
	current := kw.CurrentBid
	lo, hi := bidBounds(current, cfg.ChangeCap)
	if lo > hi {
		// A bid of a few cents has no whole-cent value inside the cap.
		return recommend.Recommendation{}, false
	}

	raw := current * target / roas
	newBid := kpi.Clamp(kpi.Round2(raw), lo, hi)
	if math.Abs(newBid-current)/current < cfg.Deadband {
		return recommend.Recommendation{}, false
	}

	reason := recommend.BidIncrease
	var impact recommend.Impact
	if newBid < current {
		reason = recommend.BidDecrease
		impact.SpendSavings = kpi.Round2(kw.Spend * (1 - newBid/current))
	}

	return recommend.NewBidChange(recommend.BidChange{
		KeywordID:   kw.ID,
		CampaignID:  kw.CampaignID,
		KeywordText: kw.Text,
		OldBid:      current,
		NewBid:      newBid,
		Reason:      reason,
	},
		confidence(kw.Clicks, cfg.ConfidenceClicks),
		impact,
		fmt.Sprintf("ROAS %.2f vs target %.2f over %d clicks", roas, target, kw.Clicks),
	), true
}

// bidBounds returns the whole-cent range a bid may move to, rounded inward
// so that the cap holds exactly. The decimal bounds are then stepped in by a
// cent where the float ratio new/current would still overshoot by an ulp.
func bidBounds(current, changeCap float64) (lo, hi float64) {
	bid := decimal.NewFromFloat(current)
	one := decimal.NewFromInt(1)
	capDec := decimal.NewFromFloat(changeCap)

	loCents := bid.Mul(one.Sub(capDec)).Shift(2).Ceil().IntPart()
	hiCents := bid.Mul(one.Add(capDec)).Shift(2).Floor().IntPart()

	for float64(loCents)/100/current < 1-changeCap {
		loCents++
	}
	for hiCents > 0 && float64(hiCents)/100/current > 1+changeCap {
		hiCents--
	}
	return float64(loCents) / 100, float64(hiCents) / 100
}
