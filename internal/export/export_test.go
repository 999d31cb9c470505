// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/bidwise/internal/recommend"
)

func testResult() *recommend.Result {
	return &recommend.Result{
		Recommendations: []recommend.Recommendation{
			recommend.NewBidChange(recommend.BidChange{
				KeywordID: "k1", CampaignID: "c1", KeywordText: "sofa",
				OldBid: 2, Reason: recommend.BidPause,
			}, 1, recommend.Impact{SpendSavings: 60}, "150 clicks without a conversion"),
			recommend.NewProductTier(recommend.ProductTierAction{
				SKU: "S1", Tier: recommend.TierStar, SuggestedBidMultiplier: 1.2, SuggestedBudgetShare: 40,
			}, 0.8, recommend.Impact{RevenueIncrease: 180}, ""),
		},
		Summary: recommend.Summary{
			Counts: map[string]int{"bid_change": 1, "product_tier": 1},
			Pauses: 1,
			Conflicts: []recommend.Conflict{{
				Target:      "keyword:k1",
				WinnerClass: recommend.ClassPause,
				LoserClass:  recommend.ClassBidChange,
			}},
		},
	}
}

func TestNewEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 15, 999, time.FixedZone("CET", 3600))

	env := NewEnvelope("run-1", at, testResult())
	if env.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", env.RunID)
	}
	want := time.Date(2026, 3, 1, 11, 30, 15, 0, time.UTC)
	if !env.GeneratedAt.Equal(want) || env.GeneratedAt.Location() != time.UTC {
		t.Errorf("GeneratedAt = %v, want %v", env.GeneratedAt, want)
	}
	if len(env.Recommendations) != 2 {
		t.Errorf("len(Recommendations) = %d, want 2", len(env.Recommendations))
	}
}

func TestNewEnvelope_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, NewEnvelope("run-1", time.Unix(0, 0), nil)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"recommendations": []`) {
		t.Errorf("empty run encoded as %s, want an empty recommendations array", buf.String())
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	env := NewEnvelope("run-1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), testResult())
	if err := Write(&buf, env); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"run_id": "run-1"`,
		`"generated_at": "2026-03-01T00:00:00Z"`,
		`"kind": "bid_change"`,
		`"reason": "pause"`,
		`"tier": "star"`,
		`"winner_class": "pause"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output does not end with a newline")
	}
}

func TestWrite_Deterministic(t *testing.T) {
	env := NewEnvelope("run-1", time.Unix(1700000000, 0), testResult())

	var a, b bytes.Buffer
	if err := Write(&a, env); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := Write(&b, env); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if a.String() != b.String() {
		t.Error("two encodings of the same envelope differ")
	}
}

func TestWriteFile_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	env := NewEnvelope("run-1", time.Unix(1700000000, 0), testResult())

	if err := WriteFile(path, env); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	got, err := Read(f)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.RunID != env.RunID || !got.GeneratedAt.Equal(env.GeneratedAt) {
		t.Errorf("Read() = %s at %v, want %s at %v", got.RunID, got.GeneratedAt, env.RunID, env.GeneratedAt)
	}
	if len(got.Recommendations) != 2 || got.Recommendations[1].ProductTier.Tier != recommend.TierStar {
		t.Errorf("Read() recommendations = %+v", got.Recommendations)
	}
	if got.Summary.Conflicts[0].WinnerClass != recommend.ClassPause {
		t.Errorf("WinnerClass = %v, want pause", got.Summary.Conflicts[0].WinnerClass)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".bidwise-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	if err := WriteFile(path, NewEnvelope("run-1", time.Now(), nil)); err == nil {
		t.Error("WriteFile() into a missing directory = nil error, want error")
	}
}

func TestRead_Invalid(t *testing.T) {
	if _, err := Read(strings.NewReader(`{"recommendations": [{"kind": "bogus"}]}`)); err == nil {
		t.Error("Read() with an unknown kind = nil error, want error")
	}
}
