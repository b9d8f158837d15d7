package inventory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadStats counts what a permissive load kept and dropped.
type LoadStats struct {
	Rows    int
	Loaded  int
	Skipped int
}

// LoadCSV reads inventory records from a CSV file with a header row of
// id,species,lng,lat,diameter_cm plus an optional offset_days column.
// Malformed rows are skipped and counted, never fatal; a missing
// required column is.
func LoadCSV(path string) ([]Record, *LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1 // Allow a variable number of fields

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("inventory file %s has no header row", path)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	stats := &LoadStats{}
	seen := make(map[string]bool)
	var records []Record

	for _, row := range rows[1:] {
		stats.Rows++
		rec, ok := parseRow(row, columns)
		if !ok || seen[rec.ID] {
			stats.Skipped++
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
		stats.Loaded++
	}

	return records, stats, nil
}

type columnIndex struct {
	id, species, lng, lat, diameter, offset int
}

func mapColumns(header []string) (columnIndex, error) {
	idx := columnIndex{id: -1, species: -1, lng: -1, lat: -1, diameter: -1, offset: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idx.id = i
		case "species":
			idx.species = i
		case "lng":
			idx.lng = i
		case "lat":
			idx.lat = i
		case "diameter_cm":
			idx.diameter = i
		case "offset_days":
			idx.offset = i
		}
	}
	if idx.id < 0 || idx.species < 0 || idx.lng < 0 || idx.lat < 0 || idx.diameter < 0 {
		return idx, fmt.Errorf("inventory header missing required columns (want id,species,lng,lat,diameter_cm)")
	}
	return idx, nil
}

// parseRow converts one CSV row into a record. Rows without a usable
// position or identity fail; a bad diameter only degrades the tree to
// the default radius and a bad offset falls back to generation.
func parseRow(row []string, idx columnIndex) (Record, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		ID:      field(idx.id),
		Species: field(idx.species),
	}
	if rec.ID == "" || rec.Species == "" {
		return rec, false
	}

	lng, err := strconv.ParseFloat(field(idx.lng), 64)
	if err != nil || lng < -180 || lng > 180 {
		return rec, false
	}
	lat, err := strconv.ParseFloat(field(idx.lat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return rec, false
	}
	rec.Lng = lng
	rec.Lat = lat

	if d, err := strconv.ParseFloat(field(idx.diameter), 64); err == nil {
		rec.DiameterCM = d
	}

	if v := field(idx.offset); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rec.OffsetDays = &n
		}
	}

	return rec, true
}
