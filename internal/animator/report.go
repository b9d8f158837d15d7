package animator

import (
	"fmt"
	"time"

	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/pkg/schema"
)

// BuildReport resolves every species name once and records the full
// provenance: which tier matched, against which key, and where the
// peak color came from.
func BuildReport(dataset, session string, resolver *phenology.Resolver, species []string) *schema.Report {
	report := &schema.Report{
		Dataset:     dataset,
		Session:     session,
		Total:       len(species),
		Counts:      make(map[string]int),
		GeneratedAt: time.Now(),
	}

	for _, name := range species {
		res := resolver.Resolve(name)
		report.Counts[string(res.Source)]++
		report.Entries = append(report.Entries, schema.ReportEntry{
			Species:    name,
			Source:     string(res.Source),
			MatchedKey: res.MatchedKey,
			Onset:      res.Band.Onset,
			Peak:       res.Band.Peak,
			Drop:       res.Band.Drop,
			Color:      fmt.Sprintf("#%02x%02x%02x", res.Color.R, res.Color.G, res.Color.B),
			ColorFrom:  string(res.ColorFrom),
			ColorKey:   res.ColorKey,
		})
	}

	return report
}
