// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package analyzers

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/tomtom215/bidwise/internal/recommend"
)

// ThemeClassifier assigns a search term to a theme.
// Implementations must be deterministic and safe for concurrent use.
type ThemeClassifier interface {
	Classify(term string) string
}

// LexiconClassifier matches terms against per-theme word lists.
//
// Terms and lexicon entries go through the same pipeline: lower-case
// tokens split on anything that is not a letter or digit, stopwords
// removed, light suffix stemming. A theme scores one point per lexicon
// entry found in the term; multi-word entries must appear as a contiguous
// token sequence. The highest score wins, ties go to the alphabetically
// first theme, and a term matching nothing gets the fallback theme.
type LexiconClassifier struct {
	themes    []lexiconTheme
	stopwords map[string]struct{}
	fallback  string
}

type lexiconTheme struct {
	name    string
	entries [][]string
}

// NewLexiconClassifier builds a classifier from a theme lexicon.
func NewLexiconClassifier(themes map[string][]string, stopwords []string, fallback string) *LexiconClassifier {
	l := &LexiconClassifier{
		stopwords: make(map[string]struct{}, len(stopwords)),
		fallback:  fallback,
	}
	for _, w := range stopwords {
		l.stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	for _, name := range slices.Sorted(maps.Keys(themes)) {
		theme := lexiconTheme{name: name}
		for _, entry := range themes[name] {
			if tokens := l.tokens(entry); len(tokens) > 0 {
				theme.entries = append(theme.entries, tokens)
			}
		}
		l.themes = append(l.themes, theme)
	}
	return l
}

// NewLexiconClassifierFromConfig builds a classifier from the negative
// keyword configuration.
func NewLexiconClassifierFromConfig(cfg *recommend.NegativeConfig) *LexiconClassifier {
	return NewLexiconClassifier(cfg.Themes, cfg.Stopwords, cfg.FallbackTheme)
}

// Classify implements ThemeClassifier.
func (l *LexiconClassifier) Classify(term string) string {
	tokens := l.tokens(term)
	if len(tokens) == 0 {
		return l.fallback
	}

	best, bestScore := l.fallback, 0
	for _, theme := range l.themes {
		score := 0
		for _, entry := range theme.entries {
			if containsSequence(tokens, entry) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = theme.name, score
		}
	}
	return best
}

// Matches reports whether any lexicon entry of theme occurs in term.
func (l *LexiconClassifier) Matches(term, theme string) bool {
	tokens := l.tokens(term)
	for _, t := range l.themes {
		if t.name != theme {
			continue
		}
		for _, entry := range t.entries {
			if containsSequence(tokens, entry) {
				return true
			}
		}
	}
	return false
}

// tokens returns the stemmed, stopword-free tokens of s.
func (l *LexiconClassifier) tokens(s string) []string {
	raw := Tokenize(s)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := l.stopwords[tok]; stop {
			continue
		}
		out = append(out, Stem(tok))
	}
	return out
}

// apostrophes are dropped inside words so that possessives stay one token.
var apostrophes = strings.NewReplacer("'", "", "\u2019", "")

// Tokenize lower-cases s, drops apostrophes and splits on every other rune
// that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(apostrophes.Replace(strings.ToLower(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// minStemLength is the shortest stem a suffix rule may leave behind.
const minStemLength = 3

// Stem strips common English inflections: ies->y, sibilant es, plural s,
// ing and ed. A rule only applies when the stem keeps at least three
// letters.
func Stem(tok string) string {
	try := func(suffix, replacement string) (string, bool) {
		if !strings.HasSuffix(tok, suffix) {
			return "", false
		}
		stem := tok[:len(tok)-len(suffix)] + replacement
		return stem, len(stem) >= minStemLength
	}

	if s, ok := try("ies", "y"); ok {
		return s
	}
	for _, suffix := range []string{"sses", "xes", "zes", "ches", "shes"} {
		if strings.HasSuffix(tok, suffix) {
			if s, ok := try("es", ""); ok {
				return s
			}
		}
	}
	if !strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us") {
		if s, ok := try("s", ""); ok {
			return s
		}
	}
	if s, ok := try("ing", ""); ok {
		return s
	}
	if s, ok := try("ed", ""); ok {
		return s
	}
	return tok
}

// containsSequence reports whether seq occurs contiguously in tokens.
func containsSequence(tokens, seq []string) bool {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return false
	}
	for i := 0; i+len(seq) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(seq)], seq) {
			return true
		}
	}
	return false
}
