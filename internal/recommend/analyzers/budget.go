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

// highPriorityFraction of a campaign's budget marks a move as high priority.
const highPriorityFraction = 0.20

// BudgetAllocator moves daily budget from underperforming campaigns to
// capped campaigns that beat their target.
//
// Donors release a share of their budget proportional to how far they
// fall below target * margin. The pool is limited by what the recipients
// can absorb and is split by ROAS surplus, water-filled against each
// recipient's headroom. Amounts are settled in whole cents and the deltas
// of one run always sum to exactly zero.
type BudgetAllocator struct {
	recommend.BaseAnalyzer
}

// NewBudgetAllocator creates the budget allocation analyzer.
func NewBudgetAllocator() *BudgetAllocator {
	return &BudgetAllocator{BaseAnalyzer: recommend.NewBaseAnalyzer(NameBudgetAllocation)}
}

// budgetParticipant is one campaign taking part in a reallocation.
type budgetParticipant struct {
	campaign *reports.CampaignRecord
	roas     float64
	target   float64

	// donors
	release float64
	// recipients
	headroom float64
	weight   float64
	alloc    float64

	delta decimal.Decimal
}

func (p *budgetParticipant) id() string {
	if p.campaign == nil {
		return "?"
	}
	return p.campaign.ID
}

// Analyze implements recommend.Analyzer.
func (b *BudgetAllocator) Analyze(_ context.Context, in *recommend.Input) (recommend.Output, error) {
	campaigns := in.Snapshot.Campaigns
	if len(campaigns) == 0 {
		return recommend.Output{}, b.InsufficientData(reports.TableCampaigns, 0, 1)
	}

	var out recommend.Output
	donors, recipients, diags := b.partition(in.Config, campaigns)
	out.Diagnostics = diags

	if len(donors) == 0 || len(recipients) == 0 {
		in.Logger.Debug().
			Int("donors", len(donors)).
			Int("recipients", len(recipients)).
			Msg("no budget to reallocate")
		return out, nil
	}

	pool := limitPool(donors, recipients)
	waterFill(pool, recipients)

	moved, err := settle(donors, recipients)
	if err != nil {
		return recommend.Output{}, err
	}
	if moved.IsZero() {
		return out, nil
	}

	cfg := &in.Config.Budget
	for _, p := range append(donors, recipients...) {
		if p.delta.IsZero() {
			continue
		}
		out.Recommendations = append(out.Recommendations, b.recommendation(cfg, p))
	}

	sort.SliceStable(out.Recommendations, func(i, j int) bool {
		a, c := out.Recommendations[i].BudgetChange, out.Recommendations[j].BudgetChange
		if a.Phase != c.Phase {
			return a.Phase < c.Phase
		}
		if a.Delta != c.Delta {
			return a.Delta < c.Delta
		}
		return a.CampaignID < c.CampaignID
	})

	in.Logger.Debug().
		Int("donors", len(donors)).
		Int("recipients", len(recipients)).
		Str("moved", moved.StringFixed(2)).
		Msg("budget reallocation complete")

	return out, nil
}

// partition splits the eligible campaigns into donors and recipients,
// both ordered by campaign ID.
func (b *BudgetAllocator) partition(cfg *recommend.Config, campaigns []reports.CampaignRecord) (donors, recipients []*budgetParticipant, diags []reports.Diagnostic) {
	order := make([]int, len(campaigns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return campaigns[order[i]].ID < campaigns[order[j]].ID
	})

	bc := &cfg.Budget
	for _, i := range order {
		c := &campaigns[i]
		if c.Status != reports.StatusActive || c.DailyBudget <= 0 {
			continue
		}
		if c.Clicks < cfg.MinSampleSize {
			diags = append(diags, b.Skipped(reports.TableCampaigns, c.ID,
				fmt.Sprintf("%d clicks below min_sample_size %d; excluded from reallocation", c.Clicks, cfg.MinSampleSize)))
			continue
		}

		p := &budgetParticipant{
			campaign: c,
			roas:     c.ROAS(),
			target:   cfg.TargetsFor(c.TypeKey()).TargetROAS,
		}
		dailySpend := c.Spend / float64(bc.ReportDays)
		floor := p.target * bc.UnderperformanceMargin

		switch {
		case dailySpend >= bc.CapFraction*c.DailyBudget && p.roas >= p.target:
			p.headroom = c.DailyBudget * bc.MaxIncreaseFraction
			p.weight = (p.roas - p.target) / p.target
			recipients = append(recipients, p)
		case p.roas < floor:
			deficit := (floor - p.roas) / floor
			p.release = math.Min(c.DailyBudget*bc.MaxShiftFraction*deficit, c.DailyBudget-bc.MinBudget)
			if p.release > 0 {
				donors = append(donors, p)
			}
		}
	}
	return donors, recipients, diags
}

// limitPool sums the donor releases, scaling every release down by the same
// factor when the recipients cannot absorb them all.
func limitPool(donors, recipients []*budgetParticipant) float64 {
	var pool, capacity float64
	for _, d := range donors {
		pool += d.release
	}
	for _, r := range recipients {
		capacity += r.headroom
	}
	if pool <= capacity {
		return pool
	}
	scale := capacity / pool
	for _, d := range donors {
		d.release *= scale
	}
	return capacity
}

// waterFill splits pool across recipients by weight. A recipient whose
// share would exceed its headroom is filled to the brim and the rest is
// split again among the others. Equal weights are used when every
// remaining weight is zero.
func waterFill(pool float64, recipients []*budgetParticipant) {
	open := append([]*budgetParticipant(nil), recipients...)
	remaining := pool

	for len(open) > 0 && remaining > 0 {
		var total float64
		for _, r := range open {
			total += r.weight
		}
		share := func(r *budgetParticipant) float64 {
			if total <= 0 {
				return remaining / float64(len(open))
			}
			return remaining * r.weight / total
		}

		var next []*budgetParticipant
		var filled float64
		for _, r := range open {
			if share(r) >= r.headroom-r.alloc {
				filled += r.headroom - r.alloc
				r.alloc = r.headroom
				continue
			}
			next = append(next, r)
		}

		if len(next) == len(open) {
			for _, r := range open {
				r.alloc += share(r)
			}
			return
		}
		remaining -= filled
		open = next
	}
}

// settle rounds every move to whole cents. Donor releases are rounded one
// by one; their total is then split across recipients by largest
// remainder, never past a recipient's headroom. Donors only lose and
// recipients only gain. It returns the total moved.
func settle(donors, recipients []*budgetParticipant) (decimal.Decimal, error) {
	donorCents := make([]int64, len(donors))
	var total int64
	for i, d := range donors {
		donorCents[i] = decimal.NewFromFloat(d.release).Shift(2).Round(0).IntPart()
		total += donorCents[i]
	}

	capCents := make([]int64, len(recipients))
	var capacity int64
	for i, r := range recipients {
		capCents[i] = decimal.NewFromFloat(r.headroom).Shift(2).Floor().IntPart()
		capacity += capCents[i]
	}
	if total > capacity {
		trimDonors(donorCents, total-capacity)
		total = capacity
	}

	recipientCents := splitCents(total, recipients, capCents)

	sum := decimal.Zero
	for i, d := range donors {
		d.delta = decimal.New(-donorCents[i], -2)
		if d.delta.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: donor %s gains %s", recommend.ErrBudgetNotConserved, d.id(), d.delta)
		}
		sum = sum.Add(d.delta)
	}
	for i, r := range recipients {
		r.delta = decimal.New(recipientCents[i], -2)
		if r.delta.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: recipient %s loses %s", recommend.ErrBudgetNotConserved, r.id(), r.delta.Neg())
		}
		sum = sum.Add(r.delta)
	}
	if !sum.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: residual %s", recommend.ErrBudgetNotConserved, sum.String())
	}
	return decimal.New(total, -2), nil
}

// trimDonors removes excess cents from the largest donors first, one cent
// per donor per pass.
func trimDonors(cents []int64, excess int64) {
	order := make([]int, len(cents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return cents[order[a]] > cents[order[b]] })

	for excess > 0 {
		trimmed := false
		for _, i := range order {
			if excess == 0 {
				break
			}
			if cents[i] > 0 {
				cents[i]--
				excess--
				trimmed = true
			}
		}
		if !trimmed {
			return
		}
	}
}

// splitCents divides total cents in proportion to each recipient's
// allocation. Every recipient gets the floor of its share; leftover cents
// go by descending fractional remainder, ties in recipient order, skipping
// recipients already at their cap.
func splitCents(total int64, recipients []*budgetParticipant, capCents []int64) []int64 {
	out := make([]int64, len(recipients))
	if total <= 0 || len(recipients) == 0 {
		return out
	}

	allocs := make([]decimal.Decimal, len(recipients))
	sumAlloc := decimal.Zero
	for i, r := range recipients {
		allocs[i] = decimal.NewFromFloat(math.Max(r.alloc, 0))
		sumAlloc = sumAlloc.Add(allocs[i])
	}

	remainders := make([]decimal.Decimal, len(recipients))
	totalDec := decimal.NewFromInt(total)
	var assigned int64
	for i := range recipients {
		var share decimal.Decimal
		if sumAlloc.IsZero() {
			share = totalDec.Div(decimal.NewFromInt(int64(len(recipients))))
		} else {
			share = totalDec.Mul(allocs[i]).Div(sumAlloc)
		}
		floor := share.Floor()
		out[i] = min(floor.IntPart(), capCents[i])
		remainders[i] = share.Sub(floor)
		assigned += out[i]
	}

	order := make([]int, len(recipients))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	for left := total - assigned; left > 0; {
		given := false
		for _, i := range order {
			if left == 0 {
				break
			}
			if out[i] < capCents[i] {
				out[i]++
				left--
				given = true
			}
		}
		if !given {
			break
		}
	}
	return out
}

func (b *BudgetAllocator) recommendation(cfg *recommend.BudgetConfig, p *budgetParticipant) recommend.Recommendation {
	c := p.campaign
	old := decimal.NewFromFloat(c.DailyBudget)
	delta := p.delta.InexactFloat64()

	conf := confidence(c.Clicks, cfg.ConfidenceClicks)
	phase := 3
	switch {
	case conf >= cfg.Phase1Confidence:
		phase = 1
	case conf >= cfg.Phase2Confidence:
		phase = 2
	}

	priority := "normal"
	if math.Abs(delta) >= highPriorityFraction*c.DailyBudget {
		priority = "high"
	}

	var rationale string
	if p.delta.IsNegative() {
		rationale = fmt.Sprintf("ROAS %.2f below %.2f (%.0f%% of target %.2f); releasing $%s of daily budget",
			p.roas, p.target*cfg.UnderperformanceMargin, cfg.UnderperformanceMargin*100, p.target, p.delta.Abs().StringFixed(2))
	} else {
		rationale = fmt.Sprintf("ROAS %.2f vs target %.2f and spending %.0f%% of daily budget; adding $%s",
			p.roas, p.target, kpi.SafeDiv(c.Spend/float64(cfg.ReportDays), c.DailyBudget)*100, p.delta.StringFixed(2))
	}

	return recommend.NewBudgetChange(recommend.BudgetChange{
		CampaignID: c.ID,
		OldBudget:  c.DailyBudget,
		NewBudget:  old.Add(p.delta).InexactFloat64(),
		Delta:      delta,
		Phase:      phase,
		Priority:   priority,
	}, conf, recommend.Impact{}, rationale)
}
