package phenology

import "testing"

func TestSuggestRanksByDistance(t *testing.T) {
	table := NewTable([]Entry{
		{Key: "Acer rubrum", Band: Band{Onset: 262, Peak: 280, Drop: 300}},
		{Key: "Acer saccharum", Band: Band{Onset: 265, Peak: 283, Drop: 302}},
		{Key: "Quercus rubra", Band: Band{Onset: 286, Peak: 308, Drop: 332}},
	})

	got := Suggest(table, "Acer rubrun", 2)
	if len(got) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(got))
	}
	if got[0].Key != "Acer rubrum" {
		t.Errorf("first suggestion = %q, want %q", got[0].Key, "Acer rubrum")
	}
	if got[0].Distance != 1 {
		t.Errorf("first distance = %d, want 1", got[0].Distance)
	}
	if got[1].Distance < got[0].Distance {
		t.Errorf("suggestions out of order: %v", got)
	}
}

func TestSuggestTieKeepsTableOrder(t *testing.T) {
	table := NewTable([]Entry{
		{Key: "abcd"},
		{Key: "abce"},
		{Key: "abcf"},
	})

	// All three are distance 1 from the query.
	got := Suggest(table, "abcx", 3)
	want := []string{"abcd", "abce", "abcf"}
	for i, w := range want {
		if got[i].Key != w {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i].Key, w)
		}
	}
}

func TestSuggestEmptyTable(t *testing.T) {
	if got := Suggest(NewTable(nil), "anything", 3); got != nil {
		t.Errorf("empty table should return nil, got %v", got)
	}
	if got := Suggest(nil, "anything", 3); got != nil {
		t.Errorf("nil table should return nil, got %v", got)
	}
	table := NewTable([]Entry{{Key: "Acer"}})
	if got := Suggest(table, "Acer", 0); got != nil {
		t.Errorf("n=0 should return nil, got %v", got)
	}
}
