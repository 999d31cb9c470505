// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package validation

import (
	"strings"
	"testing"
)

type sampleLimits struct {
	Cap     float64 `json:"change_cap" validate:"gt=0,lt=1"`
	Clicks  int64   `koanf:"pause_clicks" validate:"gte=0"`
	Hidden  int     `json:"-" validate:"gte=0"`
	Ignored int
}

type sampleRecord struct {
	ID        string       `json:"keyword_id" validate:"required"`
	MatchType string       `json:"match_type" validate:"oneof=exact phrase broad"`
	Text      string       `json:"text" validate:"min=2"`
	Limits    sampleLimits `json:"bids"`
}

func validRecord() sampleRecord {
	return sampleRecord{
		ID:        "kw-1",
		MatchType: "exact",
		Text:      "sofa",
		Limits:    sampleLimits{Cap: 0.3, Clicks: 100},
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	rec := validRecord()
	if err := ValidateStruct(&rec); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*sampleRecord)
		path    string
		tag     string
		message string
	}{
		{
			name:    "required uses json name",
			mutate:  func(r *sampleRecord) { r.ID = "" },
			path:    "keyword_id",
			tag:     "required",
			message: "keyword_id is required",
		},
		{
			name:    "oneof lists allowed values",
			mutate:  func(r *sampleRecord) { r.MatchType = "fuzzy" },
			path:    "match_type",
			tag:     "oneof",
			message: "match_type must be one of: exact phrase broad",
		},
		{
			name:    "string min counts characters",
			mutate:  func(r *sampleRecord) { r.Text = "a" },
			path:    "text",
			tag:     "min",
			message: "text must be at least 2 characters",
		},
		{
			name:    "nested path joins serialized names",
			mutate:  func(r *sampleRecord) { r.Limits.Cap = 1.5 },
			path:    "bids.change_cap",
			tag:     "lt",
			message: "bids.change_cap must be less than 1",
		},
		{
			name:    "koanf tag used when json tag absent",
			mutate:  func(r *sampleRecord) { r.Limits.Clicks = -1 },
			path:    "bids.pause_clicks",
			tag:     "gte",
			message: "bids.pause_clicks must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			verr := ValidateStruct(&rec)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			first := verr.First()
			if first.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", first.Path(), tt.path)
			}
			if first.Tag() != tt.tag {
				t.Errorf("Tag() = %q, want %q", first.Tag(), tt.tag)
			}
			if first.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", first.Error(), tt.message)
			}
		})
	}
}

func TestValidateStruct_MultipleErrorsJoined(t *testing.T) {
	rec := validRecord()
	rec.ID = ""
	rec.MatchType = ""

	verr := ValidateStruct(&rec)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if got := len(verr.Errors()); got != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", got)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() = %q, want messages joined by \"; \"", verr.Error())
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("ValidateStruct(string) = nil, want error")
	}
	if verr.First().Tag() != "unknown" {
		t.Errorf("Tag() = %q, want unknown", verr.First().Tag())
	}
}

func TestFieldErrors_FirstOnNil(t *testing.T) {
	var verr *FieldErrors
	if verr.First() != nil {
		t.Error("First() on nil receiver should return nil")
	}
}
