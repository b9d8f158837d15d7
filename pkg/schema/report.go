package schema

import "time"

// ReportEntry is the resolved provenance of one species name.
type ReportEntry struct {
	Species    string `json:"species"`
	Source     string `json:"source"`
	MatchedKey string `json:"matched_key,omitempty"`
	Onset      int    `json:"onset"`
	Peak       int    `json:"peak"`
	Drop       int    `json:"drop"`
	Color      string `json:"color"`
	ColorFrom  string `json:"color_from,omitempty"`
	ColorKey   string `json:"color_key,omitempty"`
}

// Report records how every species in a dataset resolved, keyed to
// the session that produced it. Counts is indexed by source tier.
type Report struct {
	Dataset     string         `json:"dataset"`
	Session     string         `json:"session"`
	Total       int            `json:"total"`
	Counts      map[string]int `json:"counts"`
	Entries     []ReportEntry  `json:"entries"`
	GeneratedAt time.Time      `json:"generated_at"`
}
