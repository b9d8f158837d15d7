package phenology

import "strings"

// Resolver answers species-to-timing questions against an injected
// ruleset. It holds no mutable state and is safe for concurrent
// use.
type Resolver struct {
	rules *Ruleset
}

func NewResolver(rules *Ruleset) *Resolver {
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Resolver{rules: rules}
}

// Resolve maps one species name to a timing band and a peak color.
// It never fails: names nothing matches land on the default band.
func (r *Resolver) Resolve(name string) Resolution {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		// Blank names would substring-match every row, so they go
		// straight to the default.
		band := DefaultBand()
		return Resolution{
			Species:   name,
			Band:      band,
			Color:     band.Color,
			Source:    SourceDefault,
			ColorFrom: SourceBand,
		}
	}

	band, src, key := r.resolveBand(trimmed)
	res := Resolution{
		Species:    name,
		Band:       band,
		Source:     src,
		MatchedKey: key,
	}
	res.Color, res.ColorFrom, res.ColorKey = r.resolveColor(trimmed, band)
	return res
}

// resolveBand runs the timing cascade. Tiers run in a fixed order
// and the first hit wins.
func (r *Resolver) resolveBand(name string) (Band, Source, string) {
	t := r.rules.Timing
	lower := strings.ToLower(name)

	// Tier 1: exact key match.
	if i, ok := t.exact[name]; ok {
		return t.entries[i].Band, SourceExact, t.entries[i].Key
	}

	// Tier 2: case-folded exact match.
	if i, ok := t.folded[lower]; ok {
		return t.entries[i].Band, SourceFold, t.entries[i].Key
	}

	// Tier 3: bidirectional substring over rows in stored order.
	// First row wins; the row order dependency is deliberate.
	for i := range t.entries {
		e := &t.entries[i]
		if strings.Contains(lower, e.lower) || strings.Contains(e.lower, lower) {
			return e.Band, SourceSubstring, e.Key
		}
	}

	// Tier 4: taxonomic keyword groups, in group order.
	for _, g := range r.rules.Groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Band, SourceKeyword, g.Name
			}
		}
	}

	// Tier 5: generic late-season band.
	return DefaultBand(), SourceDefault, ""
}

// resolveColor picks the peak color. A band that carries its own
// color wins outright; otherwise the color table is consulted with
// the exact, folded and substring tiers, and a full miss falls
// back to the default band's rust orange.
func (r *Resolver) resolveColor(name string, band Band) (RGB, Source, string) {
	if band.HasColor {
		return band.Color, SourceBand, ""
	}

	c := r.rules.Colors
	lower := strings.ToLower(name)

	if i, ok := c.exact[name]; ok {
		return c.entries[i].Color, SourceExact, c.entries[i].Key
	}
	if i, ok := c.folded[lower]; ok {
		return c.entries[i].Color, SourceFold, c.entries[i].Key
	}
	for i := range c.entries {
		e := &c.entries[i]
		if strings.Contains(lower, e.lower) || strings.Contains(e.lower, lower) {
			return e.Color, SourceSubstring, e.Key
		}
	}

	return DefaultBand().Color, SourceDefault, ""
}
