package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trees.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write inventory fixture: %v", err)
	}
	return path
}

func TestLoadCSVAllColumns(t *testing.T) {
	path := writeInventory(t, `id,species,lng,lat,diameter_cm,offset_days
t-001,Acer rubrum,24.9410,60.1699,38.5,3
t-002,Quercus robur,24.9502,60.1721,61.0,
t-003,Betula pendula,24.9388,60.1655,22.4,-2
`)

	records, stats, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if stats.Rows != 3 || stats.Loaded != 3 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want 3 loaded, 0 skipped", stats)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	if records[0].OffsetDays == nil || *records[0].OffsetDays != 3 {
		t.Errorf("first record offset = %v, want 3", records[0].OffsetDays)
	}
	if records[1].OffsetDays != nil {
		t.Errorf("empty offset field parsed as %d, want nil", *records[1].OffsetDays)
	}
	if records[2].OffsetDays == nil || *records[2].OffsetDays != -2 {
		t.Errorf("third record offset = %v, want -2", records[2].OffsetDays)
	}

	if records[1].Species != "Quercus robur" || records[1].DiameterCM != 61.0 {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestLoadCSVSkipsBadRows(t *testing.T) {
	path := writeInventory(t, `id,species,lng,lat,diameter_cm
t-001,Acer rubrum,24.9410,60.1699,38.5
t-002,Quercus robur,24.9502,95.2,61.0
t-003,,24.9388,60.1655,22.4
t-004,Tilia cordata,not-a-number,60.1622,30.0
t-001,Acer rubrum,24.9410,60.1699,38.5
short-row
t-005,Betula pendula,24.9301,60.1688,18.0
`)

	records, stats, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if stats.Rows != 7 {
		t.Errorf("rows = %d, want 7", stats.Rows)
	}
	if stats.Loaded != 2 || stats.Skipped != 5 {
		t.Errorf("stats = %+v, want 2 loaded, 5 skipped", stats)
	}

	if records[0].ID != "t-001" || records[1].ID != "t-005" {
		t.Errorf("kept records = %q, %q", records[0].ID, records[1].ID)
	}
}

func TestLoadCSVMissingRequiredColumn(t *testing.T) {
	path := writeInventory(t, `id,lng,lat,diameter_cm
t-001,24.9410,60.1699,38.5
`)

	_, _, err := LoadCSV(path)
	if err == nil {
		t.Fatal("expected error for missing species column")
	}
	if !strings.Contains(err.Error(), "species") {
		t.Errorf("error %q does not name the missing column set", err)
	}
}

func TestLoadCSVWithoutOffsetColumn(t *testing.T) {
	path := writeInventory(t, `id,species,lng,lat,diameter_cm
t-001,Acer rubrum,24.9410,60.1699,38.5
t-002,Quercus robur,24.9502,60.1721,61.0
`)

	records, _, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	for i, rec := range records {
		if rec.OffsetDays != nil {
			t.Errorf("record %d has offset %d without an offset column", i, *rec.OffsetDays)
		}
	}
}

func TestLoadCSVBadDiameterDegrades(t *testing.T) {
	path := writeInventory(t, `id,species,lng,lat,diameter_cm
t-001,Acer rubrum,24.9410,60.1699,n/a
`)

	records, stats, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if stats.Loaded != 1 {
		t.Fatalf("row with bad diameter dropped, stats = %+v", stats)
	}
	if records[0].DiameterCM != 0 {
		t.Errorf("diameter = %v, want 0", records[0].DiameterCM)
	}
}

func TestLoadCSVCommentsAndHeaderCase(t *testing.T) {
	path := writeInventory(t, `ID,Species,Lng,Lat,Diameter_CM
# survey export 2026-08
t-001,Acer rubrum,24.9410,60.1699,38.5
`)

	records, stats, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if stats.Rows != 1 || stats.Loaded != 1 {
		t.Errorf("stats = %+v, want single loaded row", stats)
	}
	if records[0].ID != "t-001" {
		t.Errorf("record id = %q", records[0].ID)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
