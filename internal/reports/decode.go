// Bidwise - Sponsored Products Optimization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bidwise

package reports

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// DecodeSnapshot reads a JSON snapshot document. Enumerated columns
// (status, match type) are canonicalized to their lower-case form; nothing
// else is interpreted, so the result still has to pass Validate.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.canonicalize()
	return &s, nil
}

// LoadSnapshotFile reads a JSON snapshot from disk.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return DecodeSnapshot(f)
}

func (s *Snapshot) canonicalize() {
	for i := range s.Campaigns {
		c := &s.Campaigns[i]
		c.Status = CampaignStatus(strings.ToLower(strings.TrimSpace(string(c.Status))))
		// Some exports use "enabled" for serving campaigns.
		if c.Status == "enabled" {
			c.Status = StatusActive
		}
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	}
	for i := range s.Keywords {
		k := &s.Keywords[i]
		k.MatchType = MatchType(strings.ToLower(strings.TrimSpace(string(k.MatchType))))
	}
}
