// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/tomtom215/bidwise/internal/reports"
	"github.com/tomtom215/bidwise/internal/validation"
)

// tierAllocationTolerance is the slack allowed when checking that tier
// budget allocations sum to 100.
const tierAllocationTolerance = 1e-6

// Config contains all thresholds and targets used by the analyzers. It is
// validated once by NewEngine and then only read.
type Config struct {
	// Targets maps a campaign type to its performance targets. The
	// "default" entry is required and applies to untyped campaigns and to
	// types without an entry of their own.
	Targets map[string]Targets `koanf:"targets" json:"targets" validate:"required,dive"`

	// MinSampleSize is the minimum click volume a campaign needs to take
	// part in budget reallocation.
	MinSampleSize int64 `koanf:"min_sample_size" json:"min_sample_size" validate:"gte=0"`

	// ConfidenceLevel drops evidence-based recommendations (keyword adds,
	// bid adjustments, negative keywords) scoring below it. Zero keeps all.
	ConfidenceLevel float64 `koanf:"confidence_level" json:"confidence_level" validate:"gte=0,lte=1"`

	Keywords  KeywordConfig  `koanf:"keywords" json:"keywords"`
	Bids      BidConfig      `koanf:"bids" json:"bids"`
	Budget    BudgetConfig   `koanf:"budget" json:"budget"`
	Negatives NegativeConfig `koanf:"negatives" json:"negatives"`
	Tiers     TierConfig     `koanf:"tiers" json:"tiers"`
}

// Targets are the per-campaign-type goals.
type Targets struct {
	TargetROAS float64 `koanf:"target_roas" json:"target_roas" validate:"gt=0"`
	// CTRTarget is a fraction, e.g. 0.005 for 0.5%.
	CTRTarget float64 `koanf:"ctr_target" json:"ctr_target" validate:"gte=0,lte=1"`
}

// OpportunityWeights weight the normalized components of the keyword
// opportunity score. They are normalized at runtime.
type OpportunityWeights struct {
	ConversionRate float64 `koanf:"conversion_rate" json:"conversion_rate" validate:"gte=0"`
	CTR            float64 `koanf:"ctr" json:"ctr" validate:"gte=0"`
	SupplierShare  float64 `koanf:"supplier_share" json:"supplier_share" validate:"gte=0"`
	Spend          float64 `koanf:"spend" json:"spend" validate:"gte=0"`
}

// Sum returns the total weight.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w OpportunityWeights) Sum() float64 {
	return w.ConversionRate + w.CTR + w.SupplierShare + w.Spend
}

// KeywordConfig configures keyword expansion.
type KeywordConfig struct {
	MinClicks      int64              `koanf:"min_clicks" json:"min_clicks" validate:"gte=0"`
	MinConversions int64              `koanf:"min_conversions" json:"min_conversions" validate:"gte=1"`
	MinImpressions int64              `koanf:"min_impressions" json:"min_impressions" validate:"gte=0"`
	Weights        OpportunityWeights `koanf:"weights" json:"weights"`

	// Saturation points: a component reaches its full weight at these values.
	ConversionRateSaturation float64 `koanf:"conversion_rate_saturation" json:"conversion_rate_saturation" validate:"gt=0"`
	CTRSaturation            float64 `koanf:"ctr_saturation" json:"ctr_saturation" validate:"gt=0"`
	SpendSaturation          float64 `koanf:"spend_saturation" json:"spend_saturation" validate:"gt=0"`

	MinBid         float64 `koanf:"min_bid" json:"min_bid" validate:"gt=0"`
	MaxBid         float64 `koanf:"max_bid" json:"max_bid" validate:"gt=0"`
	SeedBidFactor  float64 `koanf:"seed_bid_factor" json:"seed_bid_factor" validate:"gt=0"`
	DefaultSeedBid float64 `koanf:"default_seed_bid" json:"default_seed_bid" validate:"gt=0"`

	// CaptureRate is the share of a term's historical revenue expected to be
	// won back by targeting it directly.
	CaptureRate      float64 `koanf:"capture_rate" json:"capture_rate" validate:"gte=0,lte=1"`
	MaxCandidates    int     `koanf:"max_candidates" json:"max_candidates" validate:"gte=1"`
	ConfidenceClicks float64 `koanf:"confidence_clicks" json:"confidence_clicks" validate:"gt=0"`
}

// BidConfig configures bid optimization.
type BidConfig struct {
	// ChangeCap bounds non-pause changes to [1-cap, 1+cap] of the current bid.
	ChangeCap float64 `koanf:"change_cap" json:"change_cap" validate:"gt=0,lt=1"`
	// A keyword is paused when clicks > PauseClicks and conversions <= PauseConversions.
	PauseClicks      int64 `koanf:"pause_clicks" json:"pause_clicks" validate:"gte=0"`
	PauseConversions int64 `koanf:"pause_conversions" json:"pause_conversions" validate:"gte=0"`
	// Deadband suppresses changes smaller than this fraction of the current bid.
	Deadband         float64 `koanf:"deadband" json:"deadband" validate:"gte=0,lt=1"`
	ConfidenceClicks float64 `koanf:"confidence_clicks" json:"confidence_clicks" validate:"gt=0"`
}

// BudgetConfig configures budget reallocation.
type BudgetConfig struct {
	// CapFraction of the daily budget spent per day marks a campaign as capped.
	CapFraction            float64 `koanf:"cap_fraction" json:"cap_fraction" validate:"gt=0,lte=1"`
	UnderperformanceMargin float64 `koanf:"underperformance_margin" json:"underperformance_margin" validate:"gt=0,lte=1"`
	// MaxShiftFraction of a low performer's budget can be released per run.
	MaxShiftFraction float64 `koanf:"max_shift_fraction" json:"max_shift_fraction" validate:"gt=0,lte=1"`
	// MaxIncreaseFraction of a recipient's budget can be added per run.
	MaxIncreaseFraction float64 `koanf:"max_increase_fraction" json:"max_increase_fraction" validate:"gt=0"`
	MinBudget           float64 `koanf:"min_budget" json:"min_budget" validate:"gte=0"`
	// ReportDays is the number of days the snapshot covers.
	ReportDays       int     `koanf:"report_days" json:"report_days" validate:"gte=1"`
	Phase1Confidence float64 `koanf:"phase1_confidence" json:"phase1_confidence" validate:"gte=0,lte=1"`
	Phase2Confidence float64 `koanf:"phase2_confidence" json:"phase2_confidence" validate:"gte=0,lte=1"`
	ConfidenceClicks float64 `koanf:"confidence_clicks" json:"confidence_clicks" validate:"gt=0"`
}

// NegativeConfig configures negative keyword generation.
type NegativeConfig struct {
	MinSpend         float64 `koanf:"min_spend" json:"min_spend" validate:"gte=0"`
	MaxConversions   int64   `koanf:"max_conversions" json:"max_conversions" validate:"gte=0"`
	MinClicks        int64   `koanf:"min_clicks" json:"min_clicks" validate:"gte=0"`
	ConfidenceClicks float64 `koanf:"confidence_clicks" json:"confidence_clicks" validate:"gt=0"`

	CompetitorBrands []string `koanf:"competitor_brands" json:"competitor_brands"`
	Stopwords        []string `koanf:"stopwords" json:"stopwords"`
	// Themes maps a theme name to its lexicon. Entries may be multi-word.
	Themes        map[string][]string `koanf:"themes" json:"themes"`
	FallbackTheme string              `koanf:"fallback_theme" json:"fallback_theme" validate:"required"`
}

// TierConfig configures product tier classification.
type TierConfig struct {
	// Mode is "absolute" (use the thresholds below) or "median" (use the
	// medians of the product table).
	Mode            string  `koanf:"mode" json:"mode" validate:"oneof=absolute median"`
	ROASThreshold   float64 `koanf:"roas_threshold" json:"roas_threshold" validate:"gte=0"`
	VolumeThreshold float64 `koanf:"volume_threshold" json:"volume_threshold" validate:"gte=0"`
	// VolumeMetric is "clicks" or "impressions".
	VolumeMetric     string  `koanf:"volume_metric" json:"volume_metric" validate:"oneof=clicks impressions"`
	ConfidenceClicks float64 `koanf:"confidence_clicks" json:"confidence_clicks" validate:"gt=0"`

	// Star and potential products whose inventory covers fewer than this
	// many report-periods of conversions get their multiplier damped.
	InventoryCoverConversions float64 `koanf:"inventory_cover_conversions" json:"inventory_cover_conversions" validate:"gte=0"`
	LowInventoryDamping       float64 `koanf:"low_inventory_damping" json:"low_inventory_damping" validate:"gt=0,lte=1"`
	// Cull products with no conversions and more clicks than this get a
	// zero multiplier.
	CullPauseClicks int64 `koanf:"cull_pause_clicks" json:"cull_pause_clicks" validate:"gte=0"`

	Levels map[string]TierTargets `koanf:"levels" json:"levels" validate:"required,dive"`
}

// TierTargets is the guidance attached to one tier.
type TierTargets struct {
	BidMultiplier float64 `koanf:"bid_multiplier" json:"bid_multiplier" validate:"gte=0"`
	// BudgetAllocation is a percentage; the four tiers must sum to 100.
	BudgetAllocation float64 `koanf:"budget_allocation" json:"budget_allocation" validate:"gte=0,lte=100"`
	// RevenueUplift is the expected relative revenue gain from acting on the tier.
	RevenueUplift float64 `koanf:"revenue_uplift" json:"revenue_uplift" validate:"gte=0"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Targets: map[string]Targets{
			reports.DefaultCampaignType: {TargetROAS: 3.0, CTRTarget: 0.005},
		},
		MinSampleSize:   30,
		ConfidenceLevel: 0,
		Keywords: KeywordConfig{
			MinClicks:      1,
			MinConversions: 1,
			MinImpressions: 50,
			Weights: OpportunityWeights{
				ConversionRate: 0.4,
				CTR:            0.2,
				SupplierShare:  0.2,
				Spend:          0.2,
			},
			ConversionRateSaturation: 0.10,
			CTRSaturation:            0.05,
			SpendSaturation:          100,
			MinBid:                   0.50,
			MaxBid:                   5.00,
			SeedBidFactor:            0.8,
			DefaultSeedBid:           1.00,
			CaptureRate:              0.5,
			MaxCandidates:            100,
			ConfidenceClicks:         20,
		},
		Bids: BidConfig{
			ChangeCap:        0.30,
			PauseClicks:      100,
			PauseConversions: 0,
			Deadband:         0.05,
			ConfidenceClicks: 50,
		},
		Budget: BudgetConfig{
			CapFraction:            0.95,
			UnderperformanceMargin: 0.8,
			MaxShiftFraction:       0.5,
			MaxIncreaseFraction:    1.0,
			MinBudget:              10,
			ReportDays:             1,
			Phase1Confidence:       0.8,
			Phase2Confidence:       0.5,
			ConfidenceClicks:       100,
		},
		Negatives: NegativeConfig{
			MinSpend:         10,
			MaxConversions:   0,
			MinClicks:        0,
			ConfidenceClicks: 20,
			CompetitorBrands: []string{"amazon", "ikea", "target", "walmart", "costco", "home depot", "lowes", "overstock"},
			Stopwords: []string{"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "in", "is",
				"it", "of", "on", "or", "that", "the", "to", "with", "near", "me", "best", "buy", "online"},
			Themes: map[string][]string{
				"price_seeking": {"cheap", "budget", "discount", "clearance", "wholesale", "bargain"},
				"free":          {"free", "gratis"},
				"secondhand":    {"used", "refurbished", "secondhand", "pre owned"},
				"diy":           {"diy", "homemade", "build"},
				"repair":        {"repair", "fix", "broken", "parts", "replacement"},
				"comparison":    {"vs", "versus", "compare", "comparison", "alternative"},
				"research":      {"review", "complaint", "problem", "issue"},
				"competitor":    {"amazon", "ikea", "target", "walmart", "costco", "home depot", "lowes", "overstock"},
			},
			FallbackTheme: "irrelevant",
		},
		Tiers: TierConfig{
			Mode:                      "absolute",
			ROASThreshold:             3.0,
			VolumeThreshold:           200,
			VolumeMetric:              "clicks",
			ConfidenceClicks:          100,
			InventoryCoverConversions: 2.0,
			LowInventoryDamping:       0.9,
			CullPauseClicks:           50,
			Levels: map[string]TierTargets{
				"star":      {BidMultiplier: 1.2, BudgetAllocation: 40, RevenueUplift: 0.30},
				"potential": {BidMultiplier: 1.15, BudgetAllocation: 30, RevenueUplift: 0.50},
				"worker":    {BidMultiplier: 0.9, BudgetAllocation: 20, RevenueUplift: 0},
				"cull":      {BidMultiplier: 0.5, BudgetAllocation: 10, RevenueUplift: 0},
			},
		},
	}
}

// TargetsFor returns the targets of a campaign type, falling back to the
// default entry.
func (c *Config) TargetsFor(campaignType string) Targets {
	if t, ok := c.Targets[campaignType]; ok {
		return t
	}
	return c.Targets[reports.DefaultCampaignType]
}

// TierTargets returns the configured guidance for a tier.
func (c *Config) TierTargets(t Tier) TierTargets {
	return c.Tiers.Levels[t.String()]
}

// Validate checks the configuration for errors. Single-field ranges are
// declared as struct tags; the cross-field rules follow.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	for _, check := range []func() error{
		c.validateTargets,
		c.validateKeywords,
		c.validateBids,
		c.validateBudget,
		c.validateNegatives,
		c.validateTiers,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateTargets() error {
	if _, ok := c.Targets[reports.DefaultCampaignType]; !ok {
		return fmt.Errorf("targets.%s is required", reports.DefaultCampaignType)
	}
	return nil
}

func (c *Config) validateKeywords() error {
	k := &c.Keywords
	if k.Weights.Sum() <= 0 {
		return fmt.Errorf("keywords.weights must not all be zero")
	}
	if k.MaxBid < k.MinBid {
		return fmt.Errorf("keywords.max_bid must be >= keywords.min_bid, got %.2f < %.2f", k.MaxBid, k.MinBid)
	}
	return nil
}

func (c *Config) validateBids() error {
	if c.Bids.Deadband >= c.Bids.ChangeCap {
		return fmt.Errorf("bids.deadband must be < bids.change_cap, got %f >= %f", c.Bids.Deadband, c.Bids.ChangeCap)
	}
	return nil
}

func (c *Config) validateBudget() error {
	if c.Budget.Phase1Confidence < c.Budget.Phase2Confidence {
		return fmt.Errorf("budget.phase1_confidence must be >= budget.phase2_confidence, got %f < %f",
			c.Budget.Phase1Confidence, c.Budget.Phase2Confidence)
	}
	return nil
}

func (c *Config) validateNegatives() error {
	for _, name := range slices.Sorted(maps.Keys(c.Negatives.Themes)) {
		if name == "" {
			return fmt.Errorf("negatives.themes must not contain an empty theme name")
		}
		if len(c.Negatives.Themes[name]) == 0 {
			return fmt.Errorf("negatives.themes.%s must not be empty", name)
		}
	}
	return nil
}

func (c *Config) validateTiers() error {
	var sum float64
	for _, t := range Tiers {
		level, ok := c.Tiers.Levels[t.String()]
		if !ok {
			return fmt.Errorf("tiers.levels.%s is required", t)
		}
		sum += level.BudgetAllocation
	}
	for _, name := range slices.Sorted(maps.Keys(c.Tiers.Levels)) {
		var tier Tier
		if err := tier.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("tiers.levels.%s is not a known tier", name)
		}
	}
	if math.Abs(sum-100) > tierAllocationTolerance {
		return fmt.Errorf("tiers.levels budget_allocation must sum to 100, got %g", sum)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Targets = maps.Clone(c.Targets)
	out.Negatives.CompetitorBrands = slices.Clone(c.Negatives.CompetitorBrands)
	out.Negatives.Stopwords = slices.Clone(c.Negatives.Stopwords)
	if c.Negatives.Themes != nil {
		out.Negatives.Themes = make(map[string][]string, len(c.Negatives.Themes))
		for name, words := range c.Negatives.Themes {
			out.Negatives.Themes[name] = slices.Clone(words)
		}
	}
	out.Tiers.Levels = maps.Clone(c.Tiers.Levels)
	return &out
}
