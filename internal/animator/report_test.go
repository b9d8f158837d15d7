package animator

import (
	"testing"

	"github.com/foliolab/foliage-platform/internal/phenology"
)

func TestBuildReportProvenance(t *testing.T) {
	resolver := phenology.NewResolver(nil)
	species := []string{"Acer rubrum", "Pinus sylvestris", "Unknownus"}

	report := BuildReport("helsinki-trees", "session-1", resolver, species)

	if report.Dataset != "helsinki-trees" || report.Session != "session-1" {
		t.Errorf("report identity = %q/%q", report.Dataset, report.Session)
	}
	if report.Total != 3 || len(report.Entries) != 3 {
		t.Fatalf("total = %d entries = %d, want 3", report.Total, len(report.Entries))
	}

	if report.Counts["keyword"] != 2 || report.Counts["default"] != 1 {
		t.Errorf("counts = %v, want 2 keyword + 1 default", report.Counts)
	}

	maple := report.Entries[0]
	if maple.Source != "keyword" || maple.MatchedKey != "maple" {
		t.Errorf("maple entry = %+v", maple)
	}
	if maple.Onset != 270 || maple.Peak != 288 || maple.Drop != 306 {
		t.Errorf("maple band = %d/%d/%d", maple.Onset, maple.Peak, maple.Drop)
	}
	if maple.Color != "#d14022" {
		t.Errorf("maple color = %q, want #d14022", maple.Color)
	}

	evergreen := report.Entries[1]
	if evergreen.MatchedKey != "evergreen" || evergreen.Drop != 366 {
		t.Errorf("evergreen entry = %+v", evergreen)
	}

	fallback := report.Entries[2]
	if fallback.Source != "default" {
		t.Errorf("fallback source = %q", fallback.Source)
	}
	if fallback.Color != "#b7410e" {
		t.Errorf("fallback color = %q, want rust #b7410e", fallback.Color)
	}
}
