// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/bidwise/internal/recommend"
	"github.com/tomtom215/bidwise/internal/reports"
)

func sumDeltas(recs []recommend.Recommendation) float64 {
	var sum float64
	for _, r := range recs {
		sum += r.BudgetChange.Delta
	}
	return sum
}

func TestBudgetAllocator_Scenario(t *testing.T) {
	// A is capped at ROAS 4 against a target of 3; B converts at ROAS 1.
	snap := &reports.Snapshot{
		Campaigns: []reports.CampaignRecord{
			campaign("A", 100, perf(20000, 200, 40, 98, 392)),
			campaign("B", 100, perf(20000, 200, 4, 40, 40)),
		},
	}

	out, err := NewBudgetAllocator().Analyze(context.Background(), newInput(snap, nil))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(out.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(out.Recommendations))
	}

	donor, recipient := out.Recommendations[0].BudgetChange, out.Recommendations[1].BudgetChange
	if donor.CampaignID != "B" || recipient.CampaignID != "A" {
		t.Fatalf("order = %s, %s; want B, A", donor.CampaignID, recipient.CampaignID)
	}
	// deficit (2.4-1)/2.4 of a 50% maximum shift
	if !almostEqual(donor.Delta, -29.17) {
		t.Errorf("B delta = %v, want -29.17", donor.Delta)
	}
	if !almostEqual(recipient.Delta, 29.17) {
		t.Errorf("A delta = %v, want 29.17", recipient.Delta)
	}
	if !almostEqual(donor.NewBudget, 70.83) || !almostEqual(recipient.NewBudget, 129.17) {
		t.Errorf("new budgets = %v, %v; want 70.83, 129.17", donor.NewBudget, recipient.NewBudget)
	}
	if donor.Phase != 2 || recipient.Phase != 2 {
		t.Errorf("phases = %d, %d; want 2, 2", donor.Phase, recipient.Phase)
	}
	if donor.Priority != "high" {
		t.Errorf("Priority = %q, want high", donor.Priority)
	}
	if math.Abs(sumDeltas(out.Recommendations)) > 1e-6 {
		t.Errorf("sum of deltas = %v, want 0", sumDeltas(out.Recommendations))
	}
}

func TestBudgetAllocator_Eligibility(t *testing.T) {
	paused := campaign("P", 100, perf(20000, 200, 4, 40, 40))
	paused.Status = reports.StatusPaused

	snap := &reports.Snapshot{
		Campaigns: []reports.CampaignRecord{
			campaign("A", 100, perf(20000, 200, 40, 98, 392)),
			campaign("small", 100, perf(1000, 10, 0, 40, 0)),
			paused,
			campaign("nobudget", 0, perf(20000, 200, 4, 40, 40)),
		},
	}

	out, err := NewBudgetAllocator().Analyze(context.Background(), newInput(snap, nil))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(out.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want 0 without an eligible donor", len(out.Recommendations))
	}
	if len(out.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(out.Diagnostics))
	}
	if d := out.Diagnostics[0]; d.RecordID != "small" || d.Kind != reports.DiagInsufficientData {
		t.Errorf("diagnostic = %+v, want insufficient_data for small", d)
	}
}

func TestBudgetAllocator_PoolLimitedByHeadroom(t *testing.T) {
	snap := &reports.Snapshot{
		Campaigns: []reports.CampaignRecord{
			campaign("donor", 100, perf(20000, 100, 0, 50, 0)),
			campaign("recipient", 10, perf(2000, 100, 10, 10, 40)),
		},
	}

	out, err := NewBudgetAllocator().Analyze(context.Background(), newInput(snap, nil))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(out.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(out.Recommendations))
	}
	for _, rec := range out.Recommendations {
		b := rec.BudgetChange
		want := 10.0
		if b.CampaignID == "donor" {
			want = -10
		}
		if !almostEqual(b.Delta, want) {
			t.Errorf("%s delta = %v, want %v", b.CampaignID, b.Delta, want)
		}
	}
}

func TestBudgetAllocator_MinBudgetFloor(t *testing.T) {
	snap := &reports.Snapshot{
		Campaigns: []reports.CampaignRecord{
			campaign("donor", 12, perf(20000, 100, 0, 12, 0)),
			campaign("recipient", 100, perf(20000, 200, 40, 98, 392)),
		},
	}

	out, err := NewBudgetAllocator().Analyze(context.Background(), newInput(snap, nil))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for _, rec := range out.Recommendations {
		if b := rec.BudgetChange; b.CampaignID == "donor" && !almostEqual(b.NewBudget, 10) {
			t.Errorf("donor NewBudget = %v, want the 10.00 floor", b.NewBudget)
		}
	}
}

func TestBudgetAllocator_Conservation(t *testing.T) {
	var campaigns []reports.CampaignRecord
	for i := 0; i < 24; i++ {
		budget := float64(20 + 13*i)
		spend := budget * (0.5 + float64(i%5)*0.12)
		roas := 0.4 + float64((i*7)%11)*0.45
		clicks := int64(30 + 17*i)
		campaigns = append(campaigns, campaign(fmt.Sprintf("c%02d", i), budget,
			perf(clicks*40, clicks, clicks/10, spend, spend*roas)))
	}
	snap := &reports.Snapshot{Campaigns: campaigns}

	out, err := NewBudgetAllocator().Analyze(context.Background(), newInput(snap, nil))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(out.Recommendations) == 0 {
		t.Fatal("expected budget moves for a mixed account")
	}

	total := decimal.Zero
	for _, rec := range out.Recommendations {
		b := rec.BudgetChange
		if b.Delta == 0 {
			t.Errorf("%s: zero delta emitted", b.CampaignID)
		}
		if b.Phase < 1 || b.Phase > 3 {
			t.Errorf("%s: Phase = %d, want 1..3", b.CampaignID, b.Phase)
		}
		if !almostEqual(b.NewBudget-b.OldBudget, b.Delta) {
			t.Errorf("%s: NewBudget-OldBudget = %v, want %v", b.CampaignID, b.NewBudget-b.OldBudget, b.Delta)
		}
		total = total.Add(decimal.NewFromFloat(b.Delta))
	}
	if !total.IsZero() {
		t.Errorf("sum of deltas = %s, want 0", total)
	}
}

func TestWaterFill(t *testing.T) {
	tests := []struct {
		name      string
		pool      float64
		headroom  []float64
		weights   []float64
		wantAlloc []float64
	}{
		{"proportional", 40, []float64{100, 100}, []float64{3, 1}, []float64{30, 10}},
		{"spills past a full recipient", 40, []float64{10, 100}, []float64{3, 1}, []float64{10, 30}},
		{"equal split on zero surplus", 10, []float64{100, 100}, []float64{0, 0}, []float64{5, 5}},
		{"fills every recipient", 30, []float64{10, 20}, []float64{1, 1}, []float64{10, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients := make([]*budgetParticipant, len(tt.headroom))
			for i := range recipients {
				recipients[i] = &budgetParticipant{headroom: tt.headroom[i], weight: tt.weights[i]}
			}
			waterFill(tt.pool, recipients)
			for i, r := range recipients {
				if !almostEqual(r.alloc, tt.wantAlloc[i]) {
					t.Errorf("alloc[%d] = %v, want %v", i, r.alloc, tt.wantAlloc[i])
				}
			}
		})
	}
}

func TestSettle_Residual(t *testing.T) {
	donors := []*budgetParticipant{{release: 10}}
	recipients := []*budgetParticipant{
		{alloc: 10.0 / 3, headroom: 100},
		{alloc: 10.0 / 3, headroom: 100},
		{alloc: 10.0 / 3, headroom: 100},
	}

	moved, err := settle(donors, recipients)
	if err != nil {
		t.Fatalf("settle() error = %v", err)
	}
	if moved.StringFixed(2) != "10.00" {
		t.Errorf("moved = %s, want 10.00", moved.StringFixed(2))
	}
	want := []string{"3.34", "3.33", "3.33"}
	for i, r := range recipients {
		if got := r.delta.StringFixed(2); got != want[i] {
			t.Errorf("recipient %d delta = %s, want %s", i, got, want[i])
		}
	}
	assertSettled(t, donors, recipients)
}

func TestSettle_ManySubCentMoves(t *testing.T) {
	// Most releases round to nothing while every recipient's share is a
	// fraction of a cent. Recipients must never end up below zero.
	donors := []*budgetParticipant{{release: 0.02}}
	for i := 0; i < 19; i++ {
		donors = append(donors, &budgetParticipant{release: 0.0049})
	}
	var pool float64
	for _, d := range donors {
		pool += d.release
	}
	recipients := make([]*budgetParticipant, 19)
	for i := range recipients {
		recipients[i] = &budgetParticipant{alloc: pool / 19, headroom: 100}
	}

	moved, err := settle(donors, recipients)
	if err != nil {
		t.Fatalf("settle() error = %v", err)
	}
	if moved.StringFixed(2) != "0.02" {
		t.Errorf("moved = %s, want 0.02", moved.StringFixed(2))
	}
	if got := donors[0].delta.StringFixed(2); got != "-0.02" {
		t.Errorf("donor 0 delta = %s, want -0.02", got)
	}
	var paid int
	for _, r := range recipients {
		if r.delta.IsPositive() {
			paid++
		}
	}
	if paid != 2 {
		t.Errorf("%d recipients received a cent, want 2", paid)
	}
	assertSettled(t, donors, recipients)
}

func TestSettle_HeadroomCap(t *testing.T) {
	// Rounding the donor up would overfill the recipients by one cent.
	donors := []*budgetParticipant{{release: 10.004}}
	recipients := []*budgetParticipant{
		{alloc: 4.999, headroom: 4.999},
		{alloc: 5.004, headroom: 5.004},
	}

	moved, err := settle(donors, recipients)
	if err != nil {
		t.Fatalf("settle() error = %v", err)
	}
	if moved.StringFixed(2) != "9.99" {
		t.Errorf("moved = %s, want 9.99", moved.StringFixed(2))
	}
	want := []string{"4.99", "5.00"}
	for i, r := range recipients {
		if got := r.delta.StringFixed(2); got != want[i] {
			t.Errorf("recipient %d delta = %s, want %s", i, got, want[i])
		}
	}
	assertSettled(t, donors, recipients)
}

func assertSettled(t *testing.T, donors, recipients []*budgetParticipant) {
	t.Helper()
	sum := decimal.Zero
	for i, d := range donors {
		if d.delta.IsPositive() {
			t.Errorf("donor %d delta = %s, want <= 0", i, d.delta)
		}
		sum = sum.Add(d.delta)
	}
	for i, r := range recipients {
		if r.delta.IsNegative() {
			t.Errorf("recipient %d delta = %s, want >= 0", i, r.delta)
		}
		sum = sum.Add(r.delta)
	}
	if !sum.IsZero() {
		t.Errorf("sum = %s, want 0", sum)
	}
}

func TestErrBudgetNotConserved(t *testing.T) {
	err := fmt.Errorf("%w: residual 0.01", recommend.ErrBudgetNotConserved)
	if !errors.Is(err, recommend.ErrBudgetNotConserved) {
		t.Error("wrapped error does not match ErrBudgetNotConserved")
	}
}
