// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/bidwise/internal/kpi"
	"github.com/tomtom215/bidwise/internal/reports"
)

// Kind identifies the action a Recommendation carries.
type Kind int

const (
	// KindKeywordAdd promotes an untargeted search term to a keyword.
	KindKeywordAdd Kind = iota
	// KindBidChange adjusts or pauses an existing keyword.
	KindBidChange
	// KindBudgetChange moves daily budget between campaigns.
	KindBudgetChange
	// KindNegativeKeyword excludes a wasteful search term.
	KindNegativeKeyword
	// KindProductTier assigns a product to a performance tier.
	KindProductTier
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindKeywordAdd, KindBidChange, KindBudgetChange, KindNegativeKeyword, KindProductTier}

// String returns the serialized name of the kind.
func (k Kind) String() string {
	switch k {
	case KindKeywordAdd:
		return "keyword_add"
	case KindBidChange:
		return "bid_change"
	case KindBudgetChange:
		return "budget_change"
	case KindNegativeKeyword:
		return "negative_keyword"
	case KindProductTier:
		return "product_tier"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindKeywordAdd || k > KindProductTier {
		return nil, fmt.Errorf("unknown recommendation kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, kind := range Kinds {
		if kind.String() == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown recommendation kind %q", string(b))
}

// BidReason explains a BidChange.
type BidReason string

const (
	BidPause    BidReason = "pause"
	BidIncrease BidReason = "increase"
	BidDecrease BidReason = "decrease"
)

// Scope is the level a negative keyword is applied at.
type Scope string

const (
	ScopeCampaign Scope = "campaign"
	ScopeAccount  Scope = "account"
)

// Tier is a product performance quadrant. Lower values are higher tiers.
type Tier int

const (
	// TierStar has high ROAS and high volume.
	TierStar Tier = iota
	// TierPotential has high ROAS and low volume.
	TierPotential
	// TierWorker has low ROAS and high volume.
	TierWorker
	// TierCull has low ROAS and low volume.
	TierCull
)

// Tiers lists every tier from highest to lowest.
var Tiers = []Tier{TierStar, TierPotential, TierWorker, TierCull}

// String returns the configuration key of the tier.
func (t Tier) String() string {
	switch t {
	case TierStar:
		return "star"
	case TierPotential:
		return "potential"
	case TierWorker:
		return "worker"
	case TierCull:
		return "cull"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if t < TierStar || t > TierCull {
		return nil, fmt.Errorf("unknown tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	for _, tier := range Tiers {
		if tier.String() == string(b) {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(b))
}

// KeywordAdd proposes targeting a search term as a new keyword.
type KeywordAdd struct {
	Text             string            `json:"text"`
	MatchType        reports.MatchType `json:"match_type"`
	CampaignID       string            `json:"campaign_id"`
	SuggestedBid     float64           `json:"suggested_bid"`
	OpportunityScore float64           `json:"opportunity_score"`
}

// BidChange proposes a new bid for an existing keyword. NewBid is zero for
// a pause.
type BidChange struct {
	KeywordID   string    `json:"keyword_id"`
	CampaignID  string    `json:"campaign_id"`
	KeywordText string    `json:"keyword_text"`
	OldBid      float64   `json:"old_bid"`
	NewBid      float64   `json:"new_bid"`
	Reason      BidReason `json:"reason"`
}

// BudgetChange moves daily budget into or out of a campaign.
type BudgetChange struct {
	CampaignID string  `json:"campaign_id"`
	OldBudget  float64 `json:"old_budget"`
	NewBudget  float64 `json:"new_budget"`
	Delta      float64 `json:"delta"`
	Phase      int     `json:"phase"`
	Priority   string  `json:"priority"`
}

// NegativeKeyword proposes excluding a search term. CampaignID is empty for
// account scope.
type NegativeKeyword struct {
	Text            string  `json:"text"`
	Scope           Scope   `json:"scope"`
	Theme           string  `json:"theme"`
	CampaignID      string  `json:"campaign_id,omitempty"`
	CompetitorBrand bool    `json:"competitor_brand"`
	Campaigns       int     `json:"campaigns"`
	Clicks          int64   `json:"clicks"`
	Spend           float64 `json:"spend"`
}

// ProductTierAction assigns a product to a tier with its bid and budget
// guidance. SuggestedBudgetShare is a percentage of the product budget.
type ProductTierAction struct {
	SKU                    string  `json:"sku"`
	Tier                   Tier    `json:"tier"`
	SuggestedBidMultiplier float64 `json:"suggested_bid_multiplier"`
	SuggestedBudgetShare   float64 `json:"suggested_budget_share"`
	ROAS                   float64 `json:"roas"`
	Volume                 int64   `json:"volume"`
}

// Impact is the expected effect of applying a recommendation.
type Impact struct {
	RevenueIncrease float64 `json:"revenue_increase"`
	SpendSavings    float64 `json:"spend_savings"`
}

// Recommendation is a tagged variant: exactly one payload pointer matching
// Kind is non-nil.
type Recommendation struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence_score"`
	Impact     Impact  `json:"impact"`
	Rationale  string  `json:"rationale"`

	KeywordAdd      *KeywordAdd        `json:"keyword_add,omitempty"`
	BidChange       *BidChange         `json:"bid_change,omitempty"`
	BudgetChange    *BudgetChange      `json:"budget_change,omitempty"`
	NegativeKeyword *NegativeKeyword   `json:"negative_keyword,omitempty"`
	ProductTier     *ProductTierAction `json:"product_tier,omitempty"`
}

// idNamespace scopes the deterministic recommendation IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/bidwise/recommendation"))

func recommendationID(kind Kind, key string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind.String()+"|"+key)).String()
}

// NewKeywordAdd builds a KeywordAdd recommendation.
func NewKeywordAdd(p KeywordAdd, confidence float64, impact Impact, rationale string) Recommendation {
	return Recommendation{
		ID:         recommendationID(KindKeywordAdd, p.CampaignID+"|"+reports.NormalizeText(p.Text)),
		Kind:       KindKeywordAdd,
		Confidence: confidence,
		Impact:     impact,
		Rationale:  rationale,
		KeywordAdd: &p,
	}
}

// NewBidChange builds a BidChange recommendation.
func NewBidChange(p BidChange, confidence float64, impact Impact, rationale string) Recommendation {
	return Recommendation{
		ID:         recommendationID(KindBidChange, p.KeywordID),
		Kind:       KindBidChange,
		Confidence: confidence,
		Impact:     impact,
		Rationale:  rationale,
		BidChange:  &p,
	}
}

// NewBudgetChange builds a BudgetChange recommendation.
func NewBudgetChange(p BudgetChange, confidence float64, impact Impact, rationale string) Recommendation {
	return Recommendation{
		ID:           recommendationID(KindBudgetChange, p.CampaignID),
		Kind:         KindBudgetChange,
		Confidence:   confidence,
		Impact:       impact,
		Rationale:    rationale,
		BudgetChange: &p,
	}
}

// NewNegativeKeyword builds a NegativeKeyword recommendation.
func NewNegativeKeyword(p NegativeKeyword, confidence float64, impact Impact, rationale string) Recommendation {
	return Recommendation{
		ID:              recommendationID(KindNegativeKeyword, string(p.Scope)+"|"+p.CampaignID+"|"+reports.NormalizeText(p.Text)),
		Kind:            KindNegativeKeyword,
		Confidence:      confidence,
		Impact:          impact,
		Rationale:       rationale,
		NegativeKeyword: &p,
	}
}

// NewProductTier builds a ProductTierAction recommendation.
func NewProductTier(p ProductTierAction, confidence float64, impact Impact, rationale string) Recommendation {
	return Recommendation{
		ID:          recommendationID(KindProductTier, p.SKU),
		Kind:        KindProductTier,
		Confidence:  confidence,
		Impact:      impact,
		Rationale:   rationale,
		ProductTier: &p,
	}
}

// IsPause reports whether r is a pause BidChange.
func (r *Recommendation) IsPause() bool {
	return r.BidChange != nil && r.BidChange.Reason == BidPause
}

// Subject returns a short human-readable identifier of what r acts on.
func (r *Recommendation) Subject() string {
	switch {
	case r.KeywordAdd != nil:
		return r.KeywordAdd.CampaignID + "/" + r.KeywordAdd.Text
	case r.BidChange != nil:
		return r.BidChange.KeywordID
	case r.BudgetChange != nil:
		return r.BudgetChange.CampaignID
	case r.NegativeKeyword != nil:
		if r.NegativeKeyword.Scope == ScopeAccount {
			return "*/" + r.NegativeKeyword.Text
		}
		return r.NegativeKeyword.CampaignID + "/" + r.NegativeKeyword.Text
	case r.ProductTier != nil:
		return r.ProductTier.SKU
	default:
		return r.ID
	}
}

// numericFields returns every float the recommendation would emit, keyed by
// field name, in a fixed order.
func (r *Recommendation) numericFields() []namedValue {
	fields := []namedValue{
		{"confidence_score", r.Confidence},
		{"impact.revenue_increase", r.Impact.RevenueIncrease},
		{"impact.spend_savings", r.Impact.SpendSavings},
	}
	switch {
	case r.KeywordAdd != nil:
		fields = append(fields,
			namedValue{"suggested_bid", r.KeywordAdd.SuggestedBid},
			namedValue{"opportunity_score", r.KeywordAdd.OpportunityScore})
	case r.BidChange != nil:
		fields = append(fields,
			namedValue{"old_bid", r.BidChange.OldBid},
			namedValue{"new_bid", r.BidChange.NewBid})
	case r.BudgetChange != nil:
		fields = append(fields,
			namedValue{"old_budget", r.BudgetChange.OldBudget},
			namedValue{"new_budget", r.BudgetChange.NewBudget},
			namedValue{"delta", r.BudgetChange.Delta})
	case r.NegativeKeyword != nil:
		fields = append(fields, namedValue{"spend", r.NegativeKeyword.Spend})
	case r.ProductTier != nil:
		fields = append(fields,
			namedValue{"suggested_bid_multiplier", r.ProductTier.SuggestedBidMultiplier},
			namedValue{"suggested_budget_share", r.ProductTier.SuggestedBudgetShare},
			namedValue{"roas", r.ProductTier.ROAS})
	}
	return fields
}

type namedValue struct {
	name  string
	value float64
}

// firstNonFinite returns the first NaN or infinite field of r.
func (r *Recommendation) firstNonFinite() (namedValue, bool) {
	for _, f := range r.numericFields() {
		if !kpi.IsFinite(f.value) {
			return f, true
		}
	}
	return namedValue{}, false
}

// payloadMatchesKind reports whether exactly the payload for r.Kind is set.
func (r *Recommendation) payloadMatchesKind() bool {
	set := 0
	for _, p := range []bool{r.KeywordAdd != nil, r.BidChange != nil, r.BudgetChange != nil,
		r.NegativeKeyword != nil, r.ProductTier != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return false
	}
	switch r.Kind {
	case KindKeywordAdd:
		return r.KeywordAdd != nil
	case KindBidChange:
		return r.BidChange != nil
	case KindBudgetChange:
		return r.BudgetChange != nil
	case KindNegativeKeyword:
		return r.NegativeKeyword != nil
	case KindProductTier:
		return r.ProductTier != nil
	default:
		return false
	}
}

// Result is the output of one engine run.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}
