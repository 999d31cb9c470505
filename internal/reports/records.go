// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"github.com/tomtom215/bidwise/internal/kpi"
)

// CampaignStatus is the serving state of a campaign.
type CampaignStatus string

const (
	StatusActive CampaignStatus = "active"
	StatusPaused CampaignStatus = "paused"
)

// MatchType is a keyword's match type.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPhrase MatchType = "phrase"
	MatchBroad  MatchType = "broad"
)

// DefaultCampaignType is used for campaigns that do not declare a type.
const DefaultCampaignType = "default"

// Performance holds the funnel counters and money columns shared by every
// report row.
type Performance struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

// ROAS returns revenue / spend, or 0 when spend is zero.
func (p Performance) ROAS() float64 { return kpi.ROAS(p.Spend, p.Revenue) }

// CTR returns clicks / impressions, or 0 when impressions is zero.
func (p Performance) CTR() float64 { return kpi.CTR(p.Impressions, p.Clicks) }

// ConversionRate returns conversions / clicks, or 0 when clicks is zero.
func (p Performance) ConversionRate() float64 {
	return kpi.ConversionRate(p.Clicks, p.Conversions)
}

// CPC returns spend / clicks, or 0 when clicks is zero.
func (p Performance) CPC() float64 { return kpi.CPC(p.Spend, p.Clicks) }

// Add returns the element-wise sum of p and o.
func (p Performance) Add(o Performance) Performance {
	return Performance{
		Impressions: p.Impressions + o.Impressions,
		Clicks:      p.Clicks + o.Clicks,
		Conversions: p.Conversions + o.Conversions,
		Spend:       p.Spend + o.Spend,
		Revenue:     p.Revenue + o.Revenue,
	}
}

// CampaignRecord is one row of the campaign report.
type CampaignRecord struct {
	ID          string         `json:"campaign_id" validate:"required"`
	Name        string         `json:"campaign_name"`
	Type        string         `json:"campaign_type,omitempty"`
	Status      CampaignStatus `json:"status" validate:"oneof=active paused"`
	DailyBudget float64        `json:"daily_budget"`
	Performance
	// ReportedROAS is the optional ROAS column from the export. It is never
	// used for decisions; ROAS() is always recomputed.
	ReportedROAS *float64 `json:"roas,omitempty"`
}

// TypeKey returns the campaign type used for target lookups.
func (c CampaignRecord) TypeKey() string {
	if c.Type == "" {
		return DefaultCampaignType
	}
	return c.Type
}

// KeywordRecord is one row of the keyword report.
type KeywordRecord struct {
	ID         string    `json:"keyword_id" validate:"required"`
	Text       string    `json:"keyword_text" validate:"required"`
	MatchType  MatchType `json:"match_type" validate:"oneof=exact phrase broad"`
	CampaignID string    `json:"campaign_id" validate:"required"`
	CurrentBid float64   `json:"current_bid"`
	Performance
}

// SearchTermRecord is one row of the search term report.
type SearchTermRecord struct {
	Term       string `json:"search_term" validate:"required"`
	KeywordID  string `json:"keyword_id,omitempty"`
	CampaignID string `json:"campaign_id" validate:"required"`
	Performance
	// SupplierShare is the advertiser's share of the term's market, 0-100.
	SupplierShare float64 `json:"supplier_share"`
}

// ProductRecord is one row of the product report.
type ProductRecord struct {
	SKU           string  `json:"sku" validate:"required"`
	Name          string  `json:"product_name"`
	WholesaleCost float64 `json:"wholesale_cost"`
	RetailPrice   float64 `json:"retail_price"`
	Performance
	// InventoryLevel is nil when the export does not carry stock levels.
	InventoryLevel *int64 `json:"inventory_level,omitempty"`
}

// Margin returns (retail - wholesale) / retail, or 0 without a retail price.
func (p ProductRecord) Margin() float64 {
	return kpi.SafeDiv(p.RetailPrice-p.WholesaleCost, p.RetailPrice)
}

// TrueROAS is ROAS weighted by gross margin.
func (p ProductRecord) TrueROAS() float64 {
	return p.ROAS() * p.Margin()
}

// Snapshot is the full set of report tables for one account and one
// reporting window. Analyzers treat it as read-only.
type Snapshot struct {
	Campaigns   []CampaignRecord   `json:"campaigns"`
	Keywords    []KeywordRecord    `json:"keywords"`
	SearchTerms []SearchTermRecord `json:"search_terms"`
	Products    []ProductRecord    `json:"products"`
}

// Totals sums the campaign table, which is the account-level view of
// performance.
func (s *Snapshot) Totals() Performance {
	var total Performance
	for i := range s.Campaigns {
		total = total.Add(s.Campaigns[i].Performance)
	}
	return total
}

// Clone returns a copy whose tables can be modified without affecting s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Campaigns:   append([]CampaignRecord(nil), s.Campaigns...),
		Keywords:    append([]KeywordRecord(nil), s.Keywords...),
		SearchTerms: append([]SearchTermRecord(nil), s.SearchTerms...),
		Products:    append([]ProductRecord(nil), s.Products...),
	}
	for i := range out.Campaigns {
		if r := out.Campaigns[i].ReportedROAS; r != nil {
			v := *r
			out.Campaigns[i].ReportedROAS = &v
		}
	}
	for i := range out.Products {
		if inv := out.Products[i].InventoryLevel; inv != nil {
			v := *inv
			out.Products[i].InventoryLevel = &v
		}
	}
	return out
}
