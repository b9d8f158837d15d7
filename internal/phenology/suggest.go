package phenology

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggestion is a near-miss table key, ranked by edit distance.
type Suggestion struct {
	Key      string `json:"key"`
	Distance int    `json:"distance"`
}

// Suggest returns up to n timing-table keys closest to name by
// Levenshtein distance over lowercased strings. Ties keep table
// order. This is QA output for humans fixing their tables; it
// never participates in resolution.
func Suggest(t *Table, name string, n int) []Suggestion {
	if t == nil || t.Len() == 0 || n <= 0 {
		return nil
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	out := make([]Suggestion, 0, t.Len())
	for i := range t.entries {
		e := &t.entries[i]
		out = append(out, Suggestion{
			Key:      e.Key,
			Distance: levenshtein.ComputeDistance(lower, e.lower),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
