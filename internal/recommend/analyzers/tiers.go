// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/reports"
)

// Tier threshold modes.
const (
	TierModeAbsolute = "absolute"
	TierModeMedian   = "median"
)

// ProductTiers places every product in one ROAS x volume quadrant:
//
//	roas >= t_roas, volume >= t_vol  -> star
//	roas >= t_roas, volume <  t_vol  -> potential
//	roas <  t_roas, volume >= t_vol  -> worker
//	roas <  t_roas, volume <  t_vol  -> cull
//
// Ties on either axis go to the higher tier. Thresholds are either the
// configured absolute cutoffs or the medians of the product table. Each
// tier's configured budget allocation is split evenly among its products.
type ProductTiers struct {
	recommend.BaseAnalyzer
}

// NewProductTiers creates the product tier classifier.
func NewProductTiers() *ProductTiers {
	return &ProductTiers{BaseAnalyzer: recommend.NewBaseAnalyzer(NameProductTiers)}
}

type tieredProduct struct {
	product *reports.ProductRecord
	tier    recommend.Tier
	roas    float64
	volume  int64
}

// Analyze implements recommend.Analyzer.
func (p *ProductTiers) Analyze(_ context.Context, in *recommend.Input) (recommend.Output, error) {
	products := in.Snapshot.Products
	if len(products) == 0 {
		return recommend.Output{}, p.InsufficientData(reports.TableProducts, 0, 1)
	}

	cfg := &in.Config.Tiers
	roasThreshold, volumeThreshold := thresholds(cfg, products)

	tiered := make([]tieredProduct, len(products))
	counts := make(map[recommend.Tier]int, len(recommend.Tiers))
	for i := range products {
		prod := &products[i]
		roas := prod.ROAS()
		volume := productVolume(cfg, prod)
		tier := TierFor(roas, float64(volume), roasThreshold, volumeThreshold)
		tiered[i] = tieredProduct{product: prod, tier: tier, roas: roas, volume: volume}
		counts[tier]++
	}

	sort.SliceStable(tiered, func(i, j int) bool {
		if tiered[i].tier != tiered[j].tier {
			return tiered[i].tier < tiered[j].tier
		}
		return tiered[i].product.SKU < tiered[j].product.SKU
	})

	var out recommend.Output
	for i := range tiered {
		out.Recommendations = append(out.Recommendations,
			p.recommendation(in.Config, &tiered[i], counts[tiered[i].tier], roasThreshold, volumeThreshold))
	}

	in.Logger.Debug().
		Float64("roas_threshold", roasThreshold).
		Float64("volume_threshold", volumeThreshold).
		Int("stars", counts[recommend.TierStar]).
		Int("potentials", counts[recommend.TierPotential]).
		Int("workers", counts[recommend.TierWorker]).
		Int("culls", counts[recommend.TierCull]).
		Msg("product tiering complete")

	return out, nil
}

// TierFor returns the quadrant of a product. Both comparisons are
// inclusive so that ties land in the higher tier.
func TierFor(roas, volume, roasThreshold, volumeThreshold float64) recommend.Tier {
	highVolume := volume >= volumeThreshold
	if roas >= roasThreshold {
		if highVolume {
			return recommend.TierStar
		}
		return recommend.TierPotential
	}
	if highVolume {
		return recommend.TierWorker
	}
	return recommend.TierCull
}

func thresholds(cfg *recommend.TierConfig, products []reports.ProductRecord) (roas, volume float64) {
	if cfg.Mode != TierModeMedian {
		return cfg.ROASThreshold, cfg.VolumeThreshold
	}
	roasValues := make([]float64, len(products))
	volumes := make([]float64, len(products))
	for i := range products {
		roasValues[i] = products[i].ROAS()
		volumes[i] = float64(productVolume(cfg, &products[i]))
	}
	return kpi.Median(roasValues), kpi.Median(volumes)
}

func productVolume(cfg *recommend.TierConfig, p *reports.ProductRecord) int64 {
	if cfg.VolumeMetric == "impressions" {
		return p.Impressions
	}
	return p.Clicks
}

func (p *ProductTiers) recommendation(cfg *recommend.Config, tp *tieredProduct, inTier int, roasThreshold, volumeThreshold float64) recommend.Recommendation {
	prod := tp.product
	level := cfg.TierTargets(tp.tier)
	tc := &cfg.Tiers

	notes := []string{
		fmt.Sprintf("ROAS %.2f vs %.2f, %d %s vs %.0f", tp.roas, roasThreshold, tp.volume, tc.VolumeMetric, volumeThreshold),
	}
	if prod.RetailPrice > 0 {
		notes = append(notes, fmt.Sprintf("margin %.0f%%, true ROAS %.2f", prod.Margin()*100, prod.TrueROAS()))
	}

	multiplier := level.BidMultiplier
	switch tp.tier {
	case recommend.TierStar, recommend.TierPotential:
		if inv := prod.InventoryLevel; inv != nil && float64(*inv) < float64(prod.Conversions)*tc.InventoryCoverConversions {
			multiplier *= tc.LowInventoryDamping
			notes = append(notes, fmt.Sprintf("low inventory (%d units)", *inv))
		}
	case recommend.TierCull:
		if prod.Conversions == 0 && prod.Clicks > tc.CullPauseClicks {
			multiplier = 0
			notes = append(notes, fmt.Sprintf("no conversions after %d clicks; pause", prod.Clicks))
		}
	}

	return recommend.NewProductTier(recommend.ProductTierAction{
		SKU:                    prod.SKU,
		Tier:                   tp.tier,
		SuggestedBidMultiplier: kpi.Round4(multiplier),
		SuggestedBudgetShare:   kpi.Round2(kpi.SafeDiv(level.BudgetAllocation, float64(inTier))),
		ROAS:                   kpi.Round4(tp.roas),
		Volume:                 tp.volume,
	},
		confidence(prod.Clicks, tc.ConfidenceClicks),
		recommend.Impact{RevenueIncrease: kpi.Round2(prod.Revenue * level.RevenueUplift)},
		tp.tier.String()+": "+strings.Join(notes, "; "),
	)
}
