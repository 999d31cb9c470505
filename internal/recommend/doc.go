// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package recommend implements the sponsored-products optimization engine.
//
// # Architecture
//
// The engine turns one snapshot of advertising reports into a prioritized
// set of recommendations. Five analyzers (package analyzers) each produce
// one kind of action:
//
//   - KeywordAdd: untargeted search terms worth bidding on
//   - BidChange: bid adjustments and pauses
//   - BudgetChange: daily budget moved between campaigns
//   - NegativeKeyword: wasteful search terms to exclude
//   - ProductTierAction: product quadrant with bid and budget guidance
//
// # Run Pipeline
//
//  1. Validate the snapshot; any *reports.ValidationError aborts the run
//  2. Sanitize a copy: negative or non-finite values are clamped to zero
//  3. Fan out one goroutine per analyzer over a shared read-only Input
//  4. Fan in by registration order; InsufficientDataError empties that
//     analyzer only, any other error aborts
//  5. Suppress records carrying NaN or infinity
//  6. Resolve conflicts with the precedence table
//  7. Build the summary
//
// # Conflict Resolution
//
// Precedence from highest to lowest:
//
//	pause > negative_keyword > bid_change > budget_change > keyword_add > product_tier
//
// Two recommendations conflict only when they share a target (keyword,
// campaign/term, campaign or SKU) and their classes appear together in the
// exclusion table. The lower class is dropped and recorded as a Conflict.
// An account-scoped negative blocks the term in every campaign; a pause
// blocks the term in its own campaign.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	analyzers.Register(engine)
//
//	result, err := engine.Run(ctx, snapshot)
//
// # Determinism
//
// The same snapshot and configuration always yield the same recommendations
// in the same order with the same IDs. Nothing reads the clock or a random
// source; the timestamp label is attached by package export.
package recommend
