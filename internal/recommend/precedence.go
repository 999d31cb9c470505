// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/bidwise/internal/reports"
)

// Class is the precedence class of a recommendation. It refines Kind by
// separating pauses from other bid changes.
type Class int

const (
	ClassPause Class = iota
	ClassNegativeKeyword
	ClassBidChange
	ClassBudgetChange
	ClassKeywordAdd
	ClassProductTier
)

// String returns the class name used in conflicts and metrics.
func (c Class) String() string {
	switch c {
	case ClassPause:
		return "pause"
	case ClassNegativeKeyword:
		return "negative_keyword"
	case ClassBidChange:
		return "bid_change"
	case ClassBudgetChange:
		return "budget_change"
	case ClassKeywordAdd:
		return "keyword_add"
	case ClassProductTier:
		return "product_tier"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	for _, class := range precedenceTable {
		if class.String() == string(b) {
			*c = class
			return nil
		}
	}
	return fmt.Errorf("unknown precedence class %q", b)
}

// precedenceTable orders classes from highest to lowest precedence.
var precedenceTable = []Class{
	ClassPause,
	ClassNegativeKeyword,
	ClassBidChange,
	ClassBudgetChange,
	ClassKeywordAdd,
	ClassProductTier,
}

// exclusionTable lists the class pairs that cannot both act on the same
// target. Pairs are unordered.
var exclusionTable = [][2]Class{
	{ClassPause, ClassBidChange},
	{ClassPause, ClassKeywordAdd},
	{ClassNegativeKeyword, ClassBidChange},
	{ClassNegativeKeyword, ClassKeywordAdd},
	{ClassNegativeKeyword, ClassNegativeKeyword},
	{ClassBidChange, ClassBidChange},
	{ClassKeywordAdd, ClassKeywordAdd},
	{ClassBudgetChange, ClassBudgetChange},
	{ClassProductTier, ClassProductTier},
}

var (
	precedenceRank = func() map[Class]int {
		m := make(map[Class]int, len(precedenceTable))
		for i, c := range precedenceTable {
			m[c] = i
		}
		return m
	}()

	exclusive = func() map[[2]Class]bool {
		m := make(map[[2]Class]bool, 2*len(exclusionTable))
		for _, p := range exclusionTable {
			m[p] = true
			m[[2]Class{p[1], p[0]}] = true
		}
		return m
	}()
)

// Rank returns the class position in the precedence table; lower wins.
func (c Class) Rank() int {
	if r, ok := precedenceRank[c]; ok {
		return r
	}
	return len(precedenceTable)
}

// Excludes reports whether recommendations of classes a and b conflict
// when they share a target.
func Excludes(a, b Class) bool {
	return exclusive[[2]Class{a, b}]
}

// Class returns the precedence class of r.
func (r *Recommendation) Class() Class {
	switch r.Kind {
	case KindBidChange:
		if r.IsPause() {
			return ClassPause
		}
		return ClassBidChange
	case KindNegativeKeyword:
		return ClassNegativeKeyword
	case KindBudgetChange:
		return ClassBudgetChange
	case KindKeywordAdd:
		return ClassKeywordAdd
	case KindProductTier:
		return ClassProductTier
	default:
		return Class(len(precedenceTable))
	}
}

// target is a conflict key. A claimed target blocks later recommendations
// that touch it; a watched target is only checked.
type target struct {
	key   string
	claim bool
}

func termKey(campaignID, text string) string {
	return "term:" + campaignID + ":" + reports.NormalizeText(text)
}

func accountTermKey(text string) string {
	return termKey("*", text)
}

// targets returns the conflict keys of r. Account-scoped negatives claim
// the wildcard term key that every campaign-level recommendation watches.
func (r *Recommendation) targets() []target {
	switch {
	case r.BidChange != nil:
		// Only a pause claims the term: bid changes on two match types of
		// the same text do not conflict.
		b := r.BidChange
		return []target{
			{"keyword:" + b.KeywordID, true},
			{termKey(b.CampaignID, b.KeywordText), r.IsPause()},
			{accountTermKey(b.KeywordText), false},
		}
	case r.NegativeKeyword != nil:
		n := r.NegativeKeyword
		if n.Scope == ScopeAccount {
			return []target{{accountTermKey(n.Text), true}}
		}
		return []target{
			{termKey(n.CampaignID, n.Text), true},
			{accountTermKey(n.Text), false},
		}
	case r.KeywordAdd != nil:
		k := r.KeywordAdd
		return []target{
			{termKey(k.CampaignID, k.Text), true},
			{accountTermKey(k.Text), false},
		}
	case r.BudgetChange != nil:
		return []target{{"campaign:" + r.BudgetChange.CampaignID, true}}
	case r.ProductTier != nil:
		return []target{{"sku:" + r.ProductTier.SKU, true}}
	default:
		return nil
	}
}

// Conflict records a recommendation dropped in favour of a higher
// precedence one.
type Conflict struct {
	Target      string `json:"target"`
	Winner      string `json:"winner_id"`
	WinnerClass Class  `json:"winner_class"`
	Loser       string `json:"loser_id"`
	LoserClass  Class  `json:"loser_class"`
	LoserTarget string `json:"loser_subject"`
}

type claimant struct {
	id    string
	class Class
}

// resolveConflicts orders recs by precedence (stable, so each analyzer's
// own order survives within a class) and drops every recommendation whose
// target is already claimed by an exclusive class.
func resolveConflicts(recs []Recommendation) ([]Recommendation, []Conflict) {
	ordered := make([]Recommendation, len(recs))
	copy(ordered, recs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Class().Rank() < ordered[j].Class().Rank()
	})

	claims := make(map[string][]claimant)
	kept := make([]Recommendation, 0, len(ordered))
	var conflicts []Conflict

	for i := range ordered {
		rec := &ordered[i]
		class := rec.Class()
		targets := rec.targets()

		if c, lost := findConflict(claims, targets, class); lost {
			conflicts = append(conflicts, Conflict{
				Target:      c.key,
				Winner:      c.winner.id,
				WinnerClass: c.winner.class,
				Loser:       rec.ID,
				LoserClass:  class,
				LoserTarget: rec.Subject(),
			})
			continue
		}

		for _, t := range targets {
			if t.claim {
				claims[t.key] = append(claims[t.key], claimant{id: rec.ID, class: class})
			}
		}
		kept = append(kept, *rec)
	}

	return kept, conflicts
}

type conflictHit struct {
	key    string
	winner claimant
}

func findConflict(claims map[string][]claimant, targets []target, class Class) (conflictHit, bool) {
	for _, t := range targets {
		for _, c := range claims[t.key] {
			if Excludes(c.class, class) {
				return conflictHit{key: t.key, winner: c}, true
			}
		}
	}
	return conflictHit{}, false
}
