package phenology

import "strings"

// Entry is one timing-table row. Rows keep their source order: the
// substring tier scans first to last and the first hit wins, so
// reordering a table changes its behavior.
type Entry struct {
	Key   string
	Band  Band
	lower string
}

// Table is an ordered species timing table with exact and
// case-folded indexes built once at construction. Immutable after
// that, safe for concurrent reads.
type Table struct {
	entries []Entry
	exact   map[string]int
	folded  map[string]int
}

// NewTable builds a timing table from rows in source order. On key
// collisions the first occurrence wins.
func NewTable(entries []Entry) *Table {
	t := &Table{
		entries: entries,
		exact:   make(map[string]int, len(entries)),
		folded:  make(map[string]int, len(entries)),
	}
	for i := range t.entries {
		e := &t.entries[i]
		e.lower = strings.ToLower(e.Key)
		if _, ok := t.exact[e.Key]; !ok {
			t.exact[e.Key] = i
		}
		if _, ok := t.folded[e.lower]; !ok {
			t.folded[e.lower] = i
		}
	}
	return t
}

func (t *Table) Len() int { return len(t.entries) }

// Keys returns the row keys in source order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.entries))
	for i := range t.entries {
		keys[i] = t.entries[i].Key
	}
	return keys
}

// ColorEntry is one row of the secondary peak-color table.
type ColorEntry struct {
	Key   string
	Color RGB
	lower string
}

// ColorTable is the ordered peak-color override table. Same lookup
// contract as Table: exact and folded indexes plus an in-order
// substring scan.
type ColorTable struct {
	entries []ColorEntry
	exact   map[string]int
	folded  map[string]int
}

// NewColorTable builds a color table from rows in source order.
func NewColorTable(entries []ColorEntry) *ColorTable {
	t := &ColorTable{
		entries: entries,
		exact:   make(map[string]int, len(entries)),
		folded:  make(map[string]int, len(entries)),
	}
	for i := range t.entries {
		e := &t.entries[i]
		e.lower = strings.ToLower(e.Key)
		if _, ok := t.exact[e.Key]; !ok {
			t.exact[e.Key] = i
		}
		if _, ok := t.folded[e.lower]; !ok {
			t.folded[e.lower] = i
		}
	}
	return t
}

func (t *ColorTable) Len() int { return len(t.entries) }

// Ruleset bundles the injected phenology data a resolver works
// from: timing rows, color overrides, and keyword groups. Built
// once at startup, passed by reference, never mutated.
type Ruleset struct {
	Timing *Table
	Colors *ColorTable
	Groups []Group
}

// DefaultRuleset returns a ruleset with empty tables and the
// built-in keyword groups. Everything resolves through keywords or
// the default band, which keeps the engine usable with no
// configuration at all.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Timing: NewTable(nil),
		Colors: NewColorTable(nil),
		Groups: DefaultGroups(),
	}
}
