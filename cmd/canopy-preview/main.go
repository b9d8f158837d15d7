package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/pflag"

	"github.com/foliolab/foliage-platform/internal/foliage"
	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/internal/playback"
	"github.com/foliolab/foliage-platform/pkg/schema"
	"github.com/foliolab/foliage-platform/pkg/season"
)

const (
	historyCapacity = 100
	graphWidth      = 64
	graphHeight     = 7
	minSpeed        = 0.25
	maxSpeed        = 16.0
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Bold(true)
	pauseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// speciesRow is one previewed species with its resolved band and
// how many inventory entities carry it.
type speciesRow struct {
	name  string
	count int
	res   phenology.Resolution
}

type model struct {
	title string
	clock *playback.Clock
	rows  []speciesRow

	lat, lng float64

	// daylight is recomputed only when the integer day changes.
	daylightDay int
	daylight    schema.Daylight

	// history holds one canopy density sample per simulated day.
	history    []float64
	historyDay int
}

func newModel(title string, clock *playback.Clock, rows []speciesRow, lat, lng float64) model {
	m := model{
		title:       title,
		clock:       clock,
		rows:        rows,
		lat:         lat,
		lng:         lng,
		daylightDay: -1,
		historyDay:  -1,
		history:     make([]float64, 0, historyCapacity),
	}
	m.sample(clock.Snapshot())
	return m
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		snap := m.clock.Snapshot()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			if snap.Playing {
				m.clock.Pause()
			} else {
				m.clock.Play()
			}
		case "left", "h":
			m.clock.Seek(snap.DOY - 1)
		case "right", "l":
			m.clock.Seek(snap.DOY + 1)
		case "+", "=":
			m.clock.SetSpeed(clampSpeed(snap.Speed * 2))
		case "-", "_":
			m.clock.SetSpeed(clampSpeed(snap.Speed / 2))
		case "r":
			m.clock.Reset()
			m.history = m.history[:0]
			m.historyDay = -1
		}
		m.sample(m.clock.Snapshot())
		return m, nil
	case tickMsg:
		m.clock.Advance()
		m.sample(m.clock.Snapshot())
		return m, tick()
	}
	return m, nil
}

// sample refreshes the per-day derived values. Both the daylight
// summary and the density history key on the integer day, so a
// tick that stays inside the same day is free.
func (m *model) sample(snap playback.Snapshot) {
	day := int(snap.DOY)
	if day != m.daylightDay {
		m.daylight = season.Summarize(snap.DOY, m.lat, m.lng)
		m.daylightDay = day
	}
	if day != m.historyDay {
		m.history = append(m.history, m.density(snap.DOY))
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		m.historyDay = day
	}
}

// density is the entity-weighted mean canopy opacity in percent.
// It sweeps from the dormant baseline up through peak and down to
// zero once every canopy has dropped and faded.
func (m *model) density(doy float64) float64 {
	total := 0
	sum := 0.0
	for i := range m.rows {
		r := &m.rows[i]
		shade := foliage.Shade(&r.res, doy, 0)
		sum += float64(shade.A) * float64(r.count)
		total += r.count
	}
	if total == 0 {
		return 0
	}
	return sum / float64(total) / 255.0 * 100.0
}

func (m model) View() string {
	snap := m.clock.Snapshot()

	var s strings.Builder
	s.WriteString(headerStyle.Render("CANOPY PREVIEW: "+strings.ToUpper(m.title)) + "\n")

	status := pauseStyle.Render("PAUSED")
	if snap.Playing {
		status = playStyle.Render("PLAYING")
	}
	s.WriteString(fmt.Sprintf("%s  day %.1f (%s)  speed %gx  window %d-%d\n\n",
		status, snap.DOY, schema.DOYDate(snap.DOY), snap.Speed, snap.StartDOY, snap.EndDOY))

	for i := range m.rows {
		r := &m.rows[i]
		shade := foliage.Shade(&r.res, snap.DOY, 0)
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(shade.Hex())).Render("██████")
		if shade.A == 0 {
			swatch = dimStyle.Render("······")
		}
		band := r.res.Band
		s.WriteString(fmt.Sprintf("  %s  %-26s %s  %3d/%3d/%3d  %s\n",
			swatch,
			truncate(r.name, 26),
			dimStyle.Render(fmt.Sprintf("×%-4d", r.count)),
			band.Onset, band.Peak, band.Drop,
			dimStyle.Render(matchLabel(&r.res))))
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("Canopy density %"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Daylight") + valueStyle.Render(formatDayLength(m.daylight.DayLengthMin)))
	if m.daylight.Sunrise != "" {
		s.WriteString(valueStyle.Render(fmt.Sprintf("   %s → %s", m.daylight.Sunrise, m.daylight.Sunset)))
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Sun noon") + valueStyle.Render(fmt.Sprintf("%.1f° above horizon", m.daylight.NoonAltitude)) + "\n")

	s.WriteString(helpStyle.Render("SP:Pause  ←/→:Day  +/-:Speed  R:Reset  Q:Quit"))
	return s.String()
}

// matchLabel summarizes which cascade tier supplied the band, like
// "keyword/maple" or "default".
func matchLabel(res *phenology.Resolution) string {
	if res.MatchedKey == "" {
		return string(res.Source)
	}
	return string(res.Source) + "/" + res.MatchedKey
}

func clampSpeed(v float64) float64 {
	if v < minSpeed {
		return minSpeed
	}
	if v > maxSpeed {
		return maxSpeed
	}
	return v
}

func formatDayLength(minutes float64) string {
	h := int(minutes) / 60
	m := int(minutes) % 60
	return fmt.Sprintf("%dh %02dm", h, m)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// sampleSpecies is what the preview shows when neither a dataset
// nor explicit species are given. One representative per built-in
// keyword group.
var sampleSpecies = []string{
	"Acer rubrum",
	"Quercus robur",
	"Fraxinus excelsior",
	"Betula pendula",
	"Prunus avium",
	"Tilia cordata",
	"Pinus sylvestris",
}

func main() {
	var (
		phenologyPath string
		datasetPath   string
		speciesArgs   []string
		startDOY      int
		endDOY        int
		loopSeconds   float64
		lat           float64
		lng           float64
	)
	pflag.StringVar(&phenologyPath, "phenology", "", "Phenology ruleset YAML (built-in rules when empty)")
	pflag.StringVar(&datasetPath, "dataset", "", "Inventory CSV to preview")
	pflag.StringSliceVar(&speciesArgs, "species", nil, "Species to preview instead of a dataset")
	pflag.IntVar(&startDOY, "start-doy", 244, "First day of year of the animation window")
	pflag.IntVar(&endDOY, "end-doy", 365, "Last day of year of the animation window")
	pflag.Float64Var(&loopSeconds, "loop-seconds", playback.DefaultLoopSeconds, "Wall-clock seconds for one sweep of the window")
	pflag.Float64Var(&lat, "latitude", 60.1695, "Latitude for the daylight summary (dataset centroid wins when a dataset is given)")
	pflag.Float64Var(&lng, "longitude", 24.9354, "Longitude for the daylight summary (dataset centroid wins when a dataset is given)")
	pflag.Parse()

	resolver, err := buildResolver(phenologyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	title, rows, err := buildRows(resolver, datasetPath, speciesArgs, &lat, &lng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clock := playback.NewClock(startDOY, endDOY, loopSeconds)
	clock.Play()

	p := tea.NewProgram(newModel(title, clock, rows, lat, lng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildResolver(path string) (*phenology.Resolver, error) {
	if path == "" {
		return phenology.NewResolver(nil), nil
	}
	cfg, err := phenology.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	rules, warnings := cfg.Build()
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return phenology.NewResolver(rules), nil
}

// buildRows assembles the species list from a dataset, explicit
// names, or the built-in sample, in that order of preference. With
// a dataset the daylight coordinates snap to its centroid.
func buildRows(resolver *phenology.Resolver, datasetPath string, speciesArgs []string, lat, lng *float64) (string, []speciesRow, error) {
	if datasetPath != "" {
		records, stats, err := inventory.LoadCSV(datasetPath)
		if err != nil {
			return "", nil, err
		}
		if stats.Skipped > 0 {
			fmt.Fprintf(os.Stderr, "Warning: skipped %d of %d inventory rows\n", stats.Skipped, stats.Rows)
		}
		// Offsets never show in a species-level preview, so the
		// seed does not matter here.
		ds := inventory.NewDataset(datasetName(datasetPath), records, 0, 0)
		counts := make(map[string]int, len(ds.Species))
		for i := range ds.Entities {
			counts[ds.Entities[i].Species]++
		}
		rows := make([]speciesRow, 0, len(ds.Species))
		for _, name := range ds.Species {
			rows = append(rows, speciesRow{name: name, count: counts[name], res: resolver.Resolve(name)})
		}
		*lat = ds.CentroidLat
		*lng = ds.CentroidLng
		return ds.Name, rows, nil
	}

	names := speciesArgs
	title := "species"
	if len(names) == 0 {
		names = sampleSpecies
		title = "sample"
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	rows := make([]speciesRow, 0, len(sorted))
	for _, name := range sorted {
		rows = append(rows, speciesRow{name: name, count: 1, res: resolver.Resolve(name)})
	}
	return title, rows, nil
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
