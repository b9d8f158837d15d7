package phenology

// RGB is a peak-foliage color. Alpha is not stored here; the
// shading phases apply their own alpha ramps.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Band describes one species' autumn transition as day-of-year
// milestones, with Onset <= Peak <= Drop, all in [1, 366].
// HasColor reports whether the source row carried its own peak
// color; rows without one defer to the color-table cascade.
type Band struct {
	Onset    int
	Peak     int
	Drop     int
	Color    RGB
	HasColor bool
}

// Source identifies which cascade tier produced a value.
type Source string

const (
	SourceExact     Source = "exact"
	SourceFold      Source = "fold"
	SourceSubstring Source = "substring"
	SourceKeyword   Source = "keyword"
	SourceBand      Source = "band"
	SourceDefault   Source = "default"
)

// Resolution is the complete timing answer for one species name.
// The cascade never fails, so every species in a dataset gets one.
type Resolution struct {
	Species    string `json:"species"`
	Band       Band   `json:"-"`
	Color      RGB    `json:"color"`
	Source     Source `json:"source"`
	MatchedKey string `json:"matched_key,omitempty"`
	ColorFrom  Source `json:"color_from"`
	ColorKey   string `json:"color_key,omitempty"`
}

// DefaultBand is the last-resort band: a generic late-October turn
// with a rust-orange peak.
func DefaultBand() Band {
	return Band{Onset: 280, Peak: 300, Drop: 320, Color: RGB{R: 183, G: 65, B: 14}, HasColor: true}
}
