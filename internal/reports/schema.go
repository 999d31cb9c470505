// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"strings"
)

// Table names one input report.
type Table string

const (
	TableCampaigns   Table = "campaigns"
	TableKeywords    Table = "keywords"
	TableSearchTerms Table = "search_terms"
	TableProducts    Table = "products"
	// TableConfig is used for configuration validation failures.
	TableConfig Table = "config"
)

// Tables lists the report tables in validation order.
var Tables = []Table{TableCampaigns, TableKeywords, TableSearchTerms, TableProducts}

// Schema describes the export columns of a table.
type Schema struct {
	Required []string
	Optional []string
}

var schemas = map[Table]Schema{
	TableCampaigns: {
		Required: []string{"Campaign ID", "Campaign Name", "Status", "Daily Budget",
			"Impressions", "Clicks", "Conversions", "Spend", "Revenue"},
		Optional: []string{"ROAS", "Campaign Type"},
	},
	TableKeywords: {
		Required: []string{"Keyword ID", "Keyword Text", "Match Type", "Campaign ID",
			"Current Bid", "Impressions", "Clicks", "Conversions", "Spend", "Revenue"},
	},
	TableSearchTerms: {
		Required: []string{"Search Term", "Campaign ID", "Impressions", "Clicks",
			"Conversions", "Spend", "Revenue", "Supplier Share"},
		Optional: []string{"Keyword ID"},
	},
	TableProducts: {
		Required: []string{"SKU", "Product Name", "Wholesale Cost", "Retail Price",
			"Impressions", "Clicks", "Conversions", "Spend", "Revenue", "Inventory Level"},
	},
}

// SchemaFor returns the column schema of a report table.
func SchemaFor(t Table) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// CheckColumns verifies that a parsed header row carries every required
// column of the table. Matching ignores case, surrounding whitespace and the
// difference between spaces and underscores.
func CheckColumns(t Table, header []string) error {
	schema, ok := schemas[t]
	if !ok {
		return &ValidationError{Table: t, Reason: "unknown table"}
	}

	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[columnKey(h)] = struct{}{}
	}

	for _, col := range schema.Required {
		if _, ok := present[columnKey(col)]; !ok {
			return &ValidationError{Table: t, Column: col, Reason: "missing required column"}
		}
	}
	return nil
}

func columnKey(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeText lower-cases a term and collapses internal whitespace so that
// equivalent search terms and keyword texts compare equal.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
