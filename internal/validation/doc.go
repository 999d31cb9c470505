// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator and turns failures into
// deterministic, human-readable messages keyed by the serialized field path.
// Report records and the engine configuration both declare their single-field
// rules as struct tags and rely on this package to check them; cross-field
// rules (foreign keys, allocation sums) stay with the owning package.
//
// # Quick Start
//
//	type KeywordRecord struct {
//	    ID        string `json:"keyword_id" validate:"required"`
//	    MatchType string `json:"match_type" validate:"oneof=exact phrase broad"`
//	}
//
//	if verr := validation.ValidateStruct(&rec); verr != nil {
//	    first := verr.First()
//	    fmt.Println(first.Path(), first.Tag()) // match_type oneof
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use; struct
// metadata is cached by the underlying validator after first use.
package validation
