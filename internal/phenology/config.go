package phenology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk phenology configuration. Timing and color
// rows are lists, not maps, because row order carries meaning for
// the substring tier. Groups, when present, replace the built-in
// keyword groups wholesale.
type Config struct {
	Timing []TimingRow `yaml:"timing"`
	Colors []ColorRow  `yaml:"colors"`
	Groups []GroupRow  `yaml:"groups"`
}

// TimingRow is one species row. Color is an optional [r,g,b]
// triple; rows without one pick their peak color up from the color
// table at resolution time.
type TimingRow struct {
	Species string `yaml:"species"`
	Onset   int    `yaml:"onset"`
	Peak    int    `yaml:"peak"`
	Drop    int    `yaml:"drop"`
	Color   []int  `yaml:"color,flow"`
}

// ColorRow is one peak-color override row.
type ColorRow struct {
	Species string `yaml:"species"`
	Color   []int  `yaml:"color,flow"`
}

// GroupRow is one keyword group row.
type GroupRow struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Onset    int      `yaml:"onset"`
	Peak     int      `yaml:"peak"`
	Drop     int      `yaml:"drop"`
	Color    []int    `yaml:"color,flow"`
}

// LoadConfig reads a phenology configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phenology file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse phenology YAML: %w", err)
	}
	return &cfg, nil
}

// Build turns the configuration into an immutable Ruleset. Rows
// that fail validation are skipped, not fatal; each skip is
// reported as a human-readable warning so callers can log them.
func (c *Config) Build() (*Ruleset, []string) {
	var warnings []string

	entries := make([]Entry, 0, len(c.Timing))
	for i, row := range c.Timing {
		key := strings.TrimSpace(row.Species)
		if key == "" {
			warnings = append(warnings, fmt.Sprintf("timing row %d: empty species, skipped", i+1))
			continue
		}
		if err := validBand(row.Onset, row.Peak, row.Drop); err != nil {
			warnings = append(warnings, fmt.Sprintf("timing row %d (%s): %v, skipped", i+1, key, err))
			continue
		}
		e := Entry{Key: key, Band: Band{Onset: row.Onset, Peak: row.Peak, Drop: row.Drop}}
		if len(row.Color) > 0 {
			rgb, err := parseTriple(row.Color)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("timing row %d (%s): %v, color ignored", i+1, key, err))
			} else {
				e.Band.Color = rgb
				e.Band.HasColor = true
			}
		}
		entries = append(entries, e)
	}

	colors := make([]ColorEntry, 0, len(c.Colors))
	for i, row := range c.Colors {
		key := strings.TrimSpace(row.Species)
		if key == "" {
			warnings = append(warnings, fmt.Sprintf("color row %d: empty species, skipped", i+1))
			continue
		}
		rgb, err := parseTriple(row.Color)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("color row %d (%s): %v, skipped", i+1, key, err))
			continue
		}
		colors = append(colors, ColorEntry{Key: key, Color: rgb})
	}

	groups := DefaultGroups()
	if len(c.Groups) > 0 {
		groups = make([]Group, 0, len(c.Groups))
		for i, row := range c.Groups {
			if row.Name == "" || len(row.Keywords) == 0 {
				warnings = append(warnings, fmt.Sprintf("group row %d: missing name or keywords, skipped", i+1))
				continue
			}
			if err := validBand(row.Onset, row.Peak, row.Drop); err != nil {
				warnings = append(warnings, fmt.Sprintf("group row %d (%s): %v, skipped", i+1, row.Name, err))
				continue
			}
			rgb, err := parseTriple(row.Color)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("group row %d (%s): %v, skipped", i+1, row.Name, err))
				continue
			}
			keywords := make([]string, 0, len(row.Keywords))
			for _, kw := range row.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw != "" {
					keywords = append(keywords, kw)
				}
			}
			groups = append(groups, Group{
				Name:     row.Name,
				Keywords: keywords,
				Band:     Band{Onset: row.Onset, Peak: row.Peak, Drop: row.Drop, Color: rgb, HasColor: true},
			})
		}
	}

	return &Ruleset{
		Timing: NewTable(entries),
		Colors: NewColorTable(colors),
		Groups: groups,
	}, warnings
}

func validBand(onset, peak, drop int) error {
	if onset < 1 || onset > 366 || peak < 1 || peak > 366 || drop < 1 || drop > 366 {
		return fmt.Errorf("day of year out of range [1,366]: onset=%d peak=%d drop=%d", onset, peak, drop)
	}
	if onset > peak || peak > drop {
		return fmt.Errorf("milestones out of order: onset=%d peak=%d drop=%d", onset, peak, drop)
	}
	return nil
}

func parseTriple(c []int) (RGB, error) {
	if len(c) != 3 {
		return RGB{}, fmt.Errorf("color needs exactly 3 components, got %d", len(c))
	}
	for _, v := range c {
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("color component %d out of range [0,255]", v)
		}
	}
	return RGB{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2])}, nil
}
