package phenology

import "testing"

func TestBuildLookupCoversAllSpecies(t *testing.T) {
	r := NewResolver(newTestRuleset(t))
	species := []string{"Acer rubrum", "Quercus rubra", "Swamp white oak", "Zelkova serrata", "acer RUBRUM"}

	l := BuildLookup(r, species)
	if l.Len() != len(species) {
		t.Fatalf("lookup len = %d, want %d", l.Len(), len(species))
	}
	for i, name := range species {
		res := l.ForIndex(i)
		if res == nil {
			t.Fatalf("ForIndex(%d) = nil", i)
		}
		if res.Species != name {
			t.Errorf("ForIndex(%d).Species = %q, want %q", i, res.Species, name)
		}
	}
}

func TestLookupForIndexOutOfRange(t *testing.T) {
	r := NewResolver(newTestRuleset(t))
	l := BuildLookup(r, []string{"Acer rubrum"})

	if l.ForIndex(-1) != nil {
		t.Error("ForIndex(-1) should be nil")
	}
	if l.ForIndex(1) != nil {
		t.Error("ForIndex past the end should be nil")
	}

	var nilLookup *Lookup
	if nilLookup.ForIndex(0) != nil {
		t.Error("nil lookup should return nil")
	}
	if nilLookup.Len() != 0 {
		t.Error("nil lookup length should be 0")
	}
}

func TestLookupSummaryCounts(t *testing.T) {
	r := NewResolver(newTestRuleset(t))
	species := []string{
		"Acer rubrum",       // exact
		"acer RUBRUM",       // fold
		"Quercus rubra 'X'", // substring
		"Pin oak",           // keyword
		"Zelkova serrata",   // default
		"Mystery tree",      // default
	}

	s := BuildLookup(r, species).Summary()
	if s.Total != 6 {
		t.Errorf("total = %d, want 6", s.Total)
	}
	if s.Exact != 1 || s.Fold != 1 || s.Substring != 1 || s.Keyword != 1 || s.Default != 2 {
		t.Errorf("summary = %+v, want 1/1/1/1/2", s)
	}
	if got := s.Exact + s.Fold + s.Substring + s.Keyword + s.Default; got != s.Total {
		t.Errorf("tier counts sum to %d, want total %d", got, s.Total)
	}
}
