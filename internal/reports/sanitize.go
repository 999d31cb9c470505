// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"fmt"
	"math"

	"github.com/tomtom215/bidwise/internal/kpi"
)

// roasTolerance is the relative disagreement between a reported and a
// recomputed ROAS that is still treated as rounding.
const roasTolerance = 0.01

// Sanitize returns a copy of s in which negative or non-finite numeric
// fields are clamped to zero. Every clamp yields a computation diagnostic.
// A reported ROAS that disagrees with revenue/spend yields an inconsistent
// diagnostic; the reported value is kept but never used.
func Sanitize(s *Snapshot) (*Snapshot, []Diagnostic) {
	out := s.Clone()
	c := &clamper{}

	for i := range out.Campaigns {
		r := &out.Campaigns[i]
		c.table, c.id = TableCampaigns, recordID(r.ID, i)
		c.money("daily_budget", &r.DailyBudget)
		c.performance(&r.Performance)
		if r.ReportedROAS != nil {
			reported, actual := *r.ReportedROAS, r.ROAS()
			if !kpi.IsFinite(reported) || math.Abs(reported-actual) > roasTolerance*math.Max(actual, 1) {
				c.diag(DiagInconsistent, "roas",
					fmt.Sprintf("reported ROAS %.4g differs from recomputed %.4g", reported, actual))
			}
		}
	}
	for i := range out.Keywords {
		r := &out.Keywords[i]
		c.table, c.id = TableKeywords, recordID(r.ID, i)
		c.money("current_bid", &r.CurrentBid)
		c.performance(&r.Performance)
	}
	for i := range out.SearchTerms {
		r := &out.SearchTerms[i]
		c.table, c.id = TableSearchTerms, recordID(r.Term, i)
		c.performance(&r.Performance)
		c.money("supplier_share", &r.SupplierShare)
	}
	for i := range out.Products {
		r := &out.Products[i]
		c.table, c.id = TableProducts, recordID(r.SKU, i)
		c.money("wholesale_cost", &r.WholesaleCost)
		c.money("retail_price", &r.RetailPrice)
		c.performance(&r.Performance)
		if r.InventoryLevel != nil && *r.InventoryLevel < 0 {
			c.diag(DiagComputation, "inventory_level",
				fmt.Sprintf("negative value %d clamped to 0", *r.InventoryLevel))
			*r.InventoryLevel = 0
		}
	}

	return out, c.diags
}

type clamper struct {
	table Table
	id    string
	diags []Diagnostic
}

func (c *clamper) diag(kind DiagnosticKind, field, msg string) {
	c.diags = append(c.diags, Diagnostic{
		Kind:     kind,
		Table:    c.table,
		RecordID: c.id,
		Field:    field,
		Message:  msg,
	})
}

func (c *clamper) money(field string, v *float64) {
	switch {
	case !kpi.IsFinite(*v):
		c.diag(DiagComputation, field, fmt.Sprintf("non-finite value %v clamped to 0", *v))
		*v = 0
	case *v < 0:
		c.diag(DiagComputation, field, fmt.Sprintf("negative value %.4g clamped to 0", *v))
		*v = 0
	}
}

func (c *clamper) count(field string, v *int64) {
	if *v < 0 {
		c.diag(DiagComputation, field, fmt.Sprintf("negative value %d clamped to 0", *v))
		*v = 0
	}
}

func (c *clamper) performance(p *Performance) {
	c.count("impressions", &p.Impressions)
	c.count("clicks", &p.Clicks)
	c.count("conversions", &p.Conversions)
	c.money("spend", &p.Spend)
	c.money("revenue", &p.Revenue)
}
