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

// NegativeKeywords flags search terms that spend without converting.
//
// Rows are summed per campaign and normalized text before the thresholds
// apply. A term that is wasteful in more than one campaign becomes a
// single account-level negative carrying the combined spend; otherwise it
// is scoped to its campaign. Theming is delegated to a ThemeClassifier.
type NegativeKeywords struct {
	recommend.BaseAnalyzer
	classifier ThemeClassifier
}

// NewNegativeKeywords creates the negative keyword generator. A nil
// classifier means a LexiconClassifier built from the run configuration.
func NewNegativeKeywords(classifier ThemeClassifier) *NegativeKeywords {
	return &NegativeKeywords{
		BaseAnalyzer: recommend.NewBaseAnalyzer(NameNegativeKeywords),
		classifier:   classifier,
	}
}

// wastedTerm is one normalized term that failed to convert, with the
// campaigns it was wasteful in.
type wastedTerm struct {
	text      string
	perf      reports.Performance
	campaigns []string
}

// brandTheme names the single theme of the competitor brand matcher.
const brandTheme = "competitor_brand"

type negativeCandidate struct {
	rec   recommend.Recommendation
	theme string
	spend float64
	text  string
	camp  string
}

// Analyze implements recommend.Analyzer.
func (n *NegativeKeywords) Analyze(_ context.Context, in *recommend.Input) (recommend.Output, error) {
	terms := in.Snapshot.SearchTerms
	if len(terms) == 0 {
		return recommend.Output{}, n.InsufficientData(reports.TableSearchTerms, 0, 1)
	}

	cfg := &in.Config.Negatives
	classifier := n.classifier
	if classifier == nil {
		classifier = NewLexiconClassifierFromConfig(cfg)
	}

	var out recommend.Output
	perCampaign := make(map[string]*reports.Performance)
	var keys []string
	for i := range terms {
		t := &terms[i]
		if _, ok := in.Index.Campaign(t.CampaignID); !ok {
			out.Diagnostics = append(out.Diagnostics, n.Orphan(reports.TableSearchTerms, t.Term, t.CampaignID))
			continue
		}
		text := reports.NormalizeText(t.Term)
		if text == "" {
			continue
		}
		key := text + "\x00" + t.CampaignID
		p, seen := perCampaign[key]
		if !seen {
			p = &reports.Performance{}
			perCampaign[key] = p
			keys = append(keys, key)
		}
		*p = p.Add(t.Performance)
	}

	// Sorting the keys groups campaigns of one text together, in campaign
	// ID order.
	sort.Strings(keys)
	var wasted []*wastedTerm
	for _, key := range keys {
		p := perCampaign[key]
		if p.Spend < cfg.MinSpend || p.Conversions > cfg.MaxConversions || p.Clicks < cfg.MinClicks {
			continue
		}
		text, campaignID := splitKey(key)
		if len(wasted) == 0 || wasted[len(wasted)-1].text != text {
			wasted = append(wasted, &wastedTerm{text: text})
		}
		w := wasted[len(wasted)-1]
		w.perf = w.perf.Add(*p)
		w.campaigns = append(w.campaigns, campaignID)
	}

	brands := NewLexiconClassifier(map[string][]string{brandTheme: cfg.CompetitorBrands}, cfg.Stopwords, "")

	candidates := make([]negativeCandidate, 0, len(wasted))
	for _, w := range wasted {
		candidates = append(candidates, n.candidate(cfg, classifier, brands, w))
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.theme != b.theme {
			return a.theme < b.theme
		}
		if a.spend != b.spend {
			return a.spend > b.spend
		}
		if a.text != b.text {
			return a.text < b.text
		}
		return a.camp < b.camp
	})
	for i := range candidates {
		out.Recommendations = append(out.Recommendations, candidates[i].rec)
	}

	in.Logger.Debug().
		Int("terms", len(keys)).
		Int("negatives", len(out.Recommendations)).
		Msg("negative keyword generation complete")

	return out, nil
}

func (n *NegativeKeywords) candidate(cfg *recommend.NegativeConfig, classifier ThemeClassifier, brands *LexiconClassifier, w *wastedTerm) negativeCandidate {
	theme := classifier.Classify(w.text)
	competitor := brands.Matches(w.text, brandTheme)

	p := recommend.NegativeKeyword{
		Text:            w.text,
		Scope:           recommend.ScopeCampaign,
		Theme:           theme,
		CompetitorBrand: competitor,
		Campaigns:       len(w.campaigns),
		Clicks:          w.perf.Clicks,
		Spend:           kpi.Round2(w.perf.Spend),
	}
	if len(w.campaigns) > 1 {
		p.Scope = recommend.ScopeAccount
	} else {
		p.CampaignID = w.campaigns[0]
	}

	conf := confidence(w.perf.Clicks, cfg.ConfidenceClicks)
	if competitor {
		conf = 1.0
	}

	rationale := fmt.Sprintf("$%.2f spent over %d clicks with %d conversions in %d campaign(s); theme %s",
		w.perf.Spend, w.perf.Clicks, w.perf.Conversions, len(w.campaigns), theme)
	if competitor {
		rationale += "; competitor brand"
	}

	return negativeCandidate{
		rec:   recommend.NewNegativeKeyword(p, conf, recommend.Impact{SpendSavings: p.Spend}, rationale),
		theme: theme,
		spend: w.perf.Spend,
		text:  w.text,
		camp:  p.CampaignID,
	}
}

func splitKey(key string) (text, campaignID string) {
	text, campaignID, _ = strings.Cut(key, "\x00")
	return text, campaignID
}
