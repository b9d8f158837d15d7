package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foliolab/foliage-platform/internal/animator"
	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/pkg/schema"
	"github.com/spf13/pflag"
)

func main() {
	var (
		phenologyPath = pflag.String("phenology", "", "Path to the phenology YAML file (built-in rules when empty)")
		datasetPath   = pflag.String("dataset", "", "Path to an inventory CSV whose species to resolve")
		speciesArgs   = pflag.StringSlice("species", nil, "Species names to resolve directly (alternative to --dataset)")
		jsonOut       = pflag.Bool("json", false, "Emit the report as JSON")
		strict        = pflag.Bool("strict", false, "Exit non-zero when any species falls back to the default band")
		suggestCount  = pflag.Int("suggest", 3, "Near-miss suggestions per defaulted species (0 disables)")
	)
	pflag.Parse()

	ruleset, source, err := loadRuleset(*phenologyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load phenology rules: %v\n", err)
		os.Exit(1)
	}
	resolver := phenology.NewResolver(ruleset)

	name, species, err := collectSpecies(*datasetPath, *speciesArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to collect species: %v\n", err)
		os.Exit(1)
	}
	if len(species) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to resolve: pass --dataset or --species")
		os.Exit(1)
	}

	report := animator.BuildReport(name, "", resolver, species)

	if *jsonOut {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(formatReport(report, source))
		printSuggestions(report, ruleset, *suggestCount)
	}

	if *strict && report.Counts["default"] > 0 {
		fmt.Fprintf(os.Stderr, "strict: %d species fell back to the default band\n", report.Counts["default"])
		os.Exit(1)
	}
}

// loadRuleset reads the rules file or falls back to the built-ins.
// The second return names the source for the report header.
func loadRuleset(path string) (*phenology.Ruleset, string, error) {
	if path == "" {
		return phenology.DefaultRuleset(), "built-in", nil
	}

	cfg, err := phenology.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}

	ruleset, warnings := cfg.Build()
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	return ruleset, path, nil
}

// collectSpecies gathers the unique species list from a CSV inventory
// or directly from the command line.
func collectSpecies(datasetPath string, speciesArgs []string) (string, []string, error) {
	if datasetPath == "" {
		return "adhoc", speciesArgs, nil
	}

	records, stats, err := inventory.LoadCSV(datasetPath)
	if err != nil {
		return "", nil, err
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d of %d inventory rows\n", stats.Skipped, stats.Rows)
	}

	// The zero seed is irrelevant here; only the species list is used.
	dataset := inventory.NewDataset(datasetName(datasetPath), records, 0, 0)
	return dataset.Name, dataset.Species, nil
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formatReport(report *schema.Report, source string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Phenology resolution report: %s (rules: %s)\n\n", report.Dataset, source))
	sb.WriteString(fmt.Sprintf("%-34s %-10s %-22s %5s %5s %5s  %-8s %s\n",
		"SPECIES", "TIER", "MATCHED KEY", "ONSET", "PEAK", "DROP", "COLOR", "COLOR FROM"))

	for _, entry := range report.Entries {
		sb.WriteString(fmt.Sprintf("%-34s %-10s %-22s %5d %5d %5d  %-8s %s\n",
			truncate(entry.Species, 34),
			entry.Source,
			truncate(entry.MatchedKey, 22),
			entry.Onset,
			entry.Peak,
			entry.Drop,
			entry.Color,
			entry.ColorFrom))
	}

	sb.WriteString(fmt.Sprintf("\n%d species: %d exact, %d fold, %d substring, %d keyword, %d default\n",
		report.Total,
		report.Counts["exact"],
		report.Counts["fold"],
		report.Counts["substring"],
		report.Counts["keyword"],
		report.Counts["default"]))

	return sb.String()
}

// printSuggestions lists near misses from the timing table for every
// species that fell through to the default band.
func printSuggestions(report *schema.Report, ruleset *phenology.Ruleset, n int) {
	if n <= 0 || report.Counts["default"] == 0 || ruleset.Timing.Len() == 0 {
		return
	}

	fmt.Println("\nDefaulted species and their nearest timing rows:")
	for _, entry := range report.Entries {
		if entry.Source != "default" {
			continue
		}

		fmt.Printf("  %s\n", entry.Species)
		for _, s := range phenology.Suggest(ruleset.Timing, entry.Species, n) {
			fmt.Printf("    did you mean: %s (distance %d)\n", s.Key, s.Distance)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
