// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

// Package kpi provides the derived advertising metrics shared by every
// analyzer.
//
// All ratios follow a single zero-division policy: a zero (or non-finite)
// denominator yields 0. None of the functions return NaN or infinity, so
// zero-spend and zero-impression rows, which are common in real exports,
// never poison downstream arithmetic.
package kpi

import (
	"math"
	"slices"
)

// SafeDiv returns num/den, or 0 when den is zero or the result is not finite.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Finite(num / den)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ROAS is return on ad spend: revenue / spend.
func ROAS(spend, revenue float64) float64 {
	return SafeDiv(revenue, spend)
}

// CTR is the click-through rate as a fraction: clicks / impressions.
func CTR(impressions, clicks int64) float64 {
	return SafeDiv(float64(clicks), float64(impressions))
}

// ConversionRate is conversions / clicks as a fraction.
func ConversionRate(clicks, conversions int64) float64 {
	return SafeDiv(float64(conversions), float64(clicks))
}

// CPC is the average cost per click.
func CPC(spend float64, clicks int64) float64 {
	return SafeDiv(spend, float64(clicks))
}

// Saturation maps an evidence count onto [0,1) with n/(n+k). Half the
// maximum is reached at n == k. A non-positive k yields 1 for any n > 0.
func Saturation(n, k float64) float64 {
	if n <= 0 {
		return 0
	}
	if k <= 0 {
		return 1
	}
	return Clamp01(n / (n + k))
}

// Clamp01 limits v to [0,1]; non-finite values become 0.
func Clamp01(v float64) float64 {
	return Clamp(Finite(v), 0, 1)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds half away from zero to two decimals (cents).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds half away from zero to four decimals.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Median returns the median of values without modifying the slice. An even
// count yields the mean of the two middle values; an empty slice yields 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
