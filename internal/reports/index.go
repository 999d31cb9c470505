// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

// Index provides the lookups analyzers need over a snapshot. It is built
// once per analysis and only read afterwards, so it is safe to share
// between goroutines.
type Index struct {
	campaigns map[string]*CampaignRecord
	keywords  map[string]*KeywordRecord
	// keywordTexts maps campaign ID -> normalized keyword text -> match
	// types present for that text.
	keywordTexts map[string]map[string][]MatchType
}

// NewIndex builds the lookup tables for s. Records are referenced, not
// copied; s must not be modified while the index is in use.
func NewIndex(s *Snapshot) *Index {
	idx := &Index{
		campaigns:    make(map[string]*CampaignRecord, len(s.Campaigns)),
		keywords:     make(map[string]*KeywordRecord, len(s.Keywords)),
		keywordTexts: make(map[string]map[string][]MatchType),
	}
	for i := range s.Campaigns {
		c := &s.Campaigns[i]
		if _, dup := idx.campaigns[c.ID]; !dup {
			idx.campaigns[c.ID] = c
		}
	}
	for i := range s.Keywords {
		k := &s.Keywords[i]
		if _, dup := idx.keywords[k.ID]; !dup {
			idx.keywords[k.ID] = k
		}
		texts := idx.keywordTexts[k.CampaignID]
		if texts == nil {
			texts = make(map[string][]MatchType)
			idx.keywordTexts[k.CampaignID] = texts
		}
		norm := NormalizeText(k.Text)
		texts[norm] = append(texts[norm], k.MatchType)
	}
	return idx
}

// Campaign looks up a campaign by ID.
func (idx *Index) Campaign(id string) (*CampaignRecord, bool) {
	c, ok := idx.campaigns[id]
	return c, ok
}

// Keyword looks up a keyword by ID.
func (idx *Index) Keyword(id string) (*KeywordRecord, bool) {
	k, ok := idx.keywords[id]
	return k, ok
}

// KeywordText reports whether the campaign already targets the normalized
// text with any match type, and whether one of them is exact.
func (idx *Index) KeywordText(campaignID, normalized string) (exists, exact bool) {
	types, ok := idx.keywordTexts[campaignID][normalized]
	if !ok {
		return false, false
	}
	for _, mt := range types {
		if mt == MatchExact {
			return true, true
		}
	}
	return true, false
}
