// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"errors"
	"fmt"

	"github.com/tomtom215/bidwise/internal/validation"
)

// ValidateOptions controls the table validation pass.
type ValidateOptions struct {
	// StrictReferences turns unresolved campaign references into
	// validation errors. When false the rows are kept and every analyzer
	// skips them with an orphan diagnostic.
	StrictReferences bool
}

// Validate checks every record of the snapshot and returns all violations
// joined into one error, or nil. Each joined error is a *ValidationError.
//
// Negative values are not violations here: Sanitize clamps them and reports
// a diagnostic instead. Funnel checks (clicks <= impressions, conversions <=
// clicks) are skipped for rows carrying a negative counter for that reason.
func Validate(s *Snapshot, opts ValidateOptions) error {
	v := &validator{}

	campaigns := make(map[string]struct{}, len(s.Campaigns))
	for i := range s.Campaigns {
		c := &s.Campaigns[i]
		id := recordID(c.ID, i)
		v.structRules(TableCampaigns, id, c)
		v.unique(TableCampaigns, "campaign_id", c.ID, campaigns)
		v.funnel(TableCampaigns, id, c.Performance)
	}

	keywords := make(map[string]struct{}, len(s.Keywords))
	for i := range s.Keywords {
		k := &s.Keywords[i]
		id := recordID(k.ID, i)
		v.structRules(TableKeywords, id, k)
		v.unique(TableKeywords, "keyword_id", k.ID, keywords)
		v.funnel(TableKeywords, id, k.Performance)
		if opts.StrictReferences {
			v.reference(TableKeywords, id, k.CampaignID, campaigns)
		}
	}

	for i := range s.SearchTerms {
		st := &s.SearchTerms[i]
		id := recordID(st.Term, i)
		v.structRules(TableSearchTerms, id, st)
		v.funnel(TableSearchTerms, id, st.Performance)
		if st.SupplierShare > 100 {
			v.add(TableSearchTerms, id, "supplier_share",
				fmt.Sprintf("supplier share %.2f exceeds 100", st.SupplierShare))
		}
		if opts.StrictReferences {
			v.reference(TableSearchTerms, id, st.CampaignID, campaigns)
		}
	}

	products := make(map[string]struct{}, len(s.Products))
	for i := range s.Products {
		p := &s.Products[i]
		id := recordID(p.SKU, i)
		v.structRules(TableProducts, id, p)
		v.unique(TableProducts, "sku", p.SKU, products)
		v.funnel(TableProducts, id, p.Performance)
		if p.RetailPrice > 0 && p.WholesaleCost > p.RetailPrice {
			v.add(TableProducts, id, "wholesale_cost",
				fmt.Sprintf("wholesale cost %.2f exceeds retail price %.2f", p.WholesaleCost, p.RetailPrice))
		}
	}

	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) add(t Table, id, column, reason string) {
	v.errs = append(v.errs, &ValidationError{Table: t, RecordID: id, Column: column, Reason: reason})
}

func (v *validator) structRules(t Table, id string, rec interface{}) {
	verr := validation.ValidateStruct(rec)
	if verr == nil {
		return
	}
	for _, fe := range verr.Errors() {
		v.add(t, id, fe.Path(), fe.Error())
	}
}

func (v *validator) unique(t Table, column, key string, seen map[string]struct{}) {
	if key == "" {
		return
	}
	if _, dup := seen[key]; dup {
		v.add(t, key, column, "duplicate id")
		return
	}
	seen[key] = struct{}{}
}

func (v *validator) reference(t Table, id, campaignID string, campaigns map[string]struct{}) {
	if campaignID == "" {
		return
	}
	if _, ok := campaigns[campaignID]; !ok {
		v.add(t, id, "campaign_id", fmt.Sprintf("unknown campaign %q", campaignID))
	}
}

func (v *validator) funnel(t Table, id string, p Performance) {
	if p.Impressions < 0 || p.Clicks < 0 || p.Conversions < 0 {
		return
	}
	if p.Clicks > p.Impressions {
		v.add(t, id, "clicks", fmt.Sprintf("clicks %d exceed impressions %d", p.Clicks, p.Impressions))
	}
	if p.Conversions > p.Clicks {
		v.add(t, id, "conversions", fmt.Sprintf("conversions %d exceed clicks %d", p.Conversions, p.Clicks))
	}
}

// recordID identifies a row in messages, falling back to its position.
func recordID(key string, index int) string {
	if key != "" {
		return key
	}
	return fmt.Sprintf("#%d", index+1)
}
