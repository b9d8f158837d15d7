package phenology

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildSkipsInvalidRows(t *testing.T) {
	cfg := &Config{
		Timing: []TimingRow{
			{Species: "Acer rubrum", Onset: 262, Peak: 280, Drop: 300},
			{Species: "", Onset: 262, Peak: 280, Drop: 300},
			{Species: "Backwards", Onset: 300, Peak: 280, Drop: 262},
			{Species: "OutOfRange", Onset: 0, Peak: 280, Drop: 400},
		},
		Colors: []ColorRow{
			{Species: "Acer", Color: []int{204, 36, 29}},
			{Species: "ShortColor", Color: []int{204, 36}},
			{Species: "HotColor", Color: []int{300, 36, 29}},
		},
	}

	rules, warnings := cfg.Build()
	if rules.Timing.Len() != 1 {
		t.Errorf("timing rows kept = %d, want 1", rules.Timing.Len())
	}
	if rules.Colors.Len() != 1 {
		t.Errorf("color rows kept = %d, want 1", rules.Colors.Len())
	}
	if len(warnings) != 5 {
		t.Errorf("warnings = %d, want 5: %v", len(warnings), warnings)
	}
}

func TestBuildKeepsRowWhenOnlyColorBad(t *testing.T) {
	cfg := &Config{
		Timing: []TimingRow{
			{Species: "Acer rubrum", Onset: 262, Peak: 280, Drop: 300, Color: []int{204, 36}},
		},
	}

	rules, warnings := cfg.Build()
	if rules.Timing.Len() != 1 {
		t.Fatalf("timing rows kept = %d, want 1", rules.Timing.Len())
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(warnings))
	}

	res := NewResolver(rules).Resolve("Acer rubrum")
	if res.Band.HasColor {
		t.Error("band should not carry the rejected color")
	}
}

func TestBuildPreservesRowOrder(t *testing.T) {
	cfg := &Config{
		Timing: []TimingRow{
			{Species: "Charlie", Onset: 250, Peak: 260, Drop: 270},
			{Species: "Alpha", Onset: 250, Peak: 260, Drop: 270},
			{Species: "Bravo", Onset: 250, Peak: 260, Drop: 270},
		},
	}

	rules, _ := cfg.Build()
	keys := rules.Timing.Keys()
	want := []string{"Charlie", "Alpha", "Bravo"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestBuildDuplicateKeyFirstWins(t *testing.T) {
	cfg := &Config{
		Timing: []TimingRow{
			{Species: "Acer rubrum", Onset: 262, Peak: 280, Drop: 300},
			{Species: "Acer rubrum", Onset: 100, Peak: 110, Drop: 120},
		},
	}

	rules, _ := cfg.Build()
	res := NewResolver(rules).Resolve("Acer rubrum")
	if res.Band.Onset != 262 {
		t.Errorf("onset = %d, want first row's 262", res.Band.Onset)
	}
}

func TestBuildCustomGroupsReplaceBuiltins(t *testing.T) {
	cfg := &Config{
		Groups: []GroupRow{
			{Name: "ginkgo", Keywords: []string{"ginkgo", "biloba"}, Onset: 290, Peak: 305, Drop: 312, Color: []int{255, 215, 0}},
		},
	}

	rules, warnings := cfg.Build()
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	r := NewResolver(rules)

	res := r.Resolve("Ginkgo biloba")
	if res.Source != SourceKeyword || res.MatchedKey != "ginkgo" {
		t.Errorf("custom group should match, got source=%s key=%q", res.Source, res.MatchedKey)
	}

	// Built-in maple group is gone.
	res = r.Resolve("Red maple")
	if res.Source != SourceDefault {
		t.Errorf("builtin groups should be replaced, got source=%s", res.Source)
	}
}

func TestBuildZeroWidthBandAccepted(t *testing.T) {
	cfg := &Config{
		Timing: []TimingRow{
			{Species: "Instant", Onset: 280, Peak: 280, Drop: 280},
		},
	}

	rules, warnings := cfg.Build()
	if len(warnings) != 0 {
		t.Fatalf("equal milestones should be valid: %v", warnings)
	}
	if rules.Timing.Len() != 1 {
		t.Errorf("timing rows kept = %d, want 1", rules.Timing.Len())
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	content := `
timing:
  - species: "Acer rubrum"
    onset: 262
    peak: 280
    drop: 300
    color: [204, 36, 29]
  - species: "Quercus rubra"
    onset: 286
    peak: 308
    drop: 332
colors:
  - species: "Quercus"
    color: [150, 90, 50]
`
	path := filepath.Join(t.TempDir(), "phenology.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Timing) != 2 || len(cfg.Colors) != 1 {
		t.Fatalf("rows = %d timing / %d colors, want 2/1", len(cfg.Timing), len(cfg.Colors))
	}

	rules, warnings := cfg.Build()
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	res := NewResolver(rules).Resolve("Acer rubrum")
	if res.Source != SourceExact || res.Color != (RGB{R: 204, G: 36, B: 29}) {
		t.Errorf("resolution from file = %+v", res)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
