package phenology

// Group is a taxonomic keyword fallback. When no table row matches
// a species name, the lowercased name is tested against each
// group's keywords and the first hit supplies the group's band.
// Group order and keyword order are part of the matching contract.
type Group struct {
	Name     string
	Keywords []string
	Band     Band
}

// DefaultGroups returns the built-in keyword groups in evaluation
// order. Bands cover common genera by vernacular and scientific
// name; the conifer group pins Drop to the end of the year so
// evergreens stay in canopy through any autumn window.
func DefaultGroups() []Group {
	return []Group{
		{
			Name:     "oak",
			Keywords: []string{"oak", "quercus"},
			Band:     Band{Onset: 284, Peak: 306, Drop: 330, Color: RGB{R: 158, G: 88, B: 49}, HasColor: true},
		},
		{
			Name:     "maple",
			Keywords: []string{"maple", "acer"},
			Band:     Band{Onset: 270, Peak: 288, Drop: 306, Color: RGB{R: 209, G: 64, B: 34}, HasColor: true},
		},
		{
			Name:     "ash",
			Keywords: []string{"ash", "fraxinus"},
			Band:     Band{Onset: 258, Peak: 274, Drop: 290, Color: RGB{R: 143, G: 78, B: 120}, HasColor: true},
		},
		{
			Name:     "birch",
			Keywords: []string{"birch", "betula"},
			Band:     Band{Onset: 264, Peak: 281, Drop: 299, Color: RGB{R: 236, G: 197, B: 66}, HasColor: true},
		},
		{
			Name:     "cherry",
			Keywords: []string{"cherry", "prunus"},
			Band:     Band{Onset: 256, Peak: 273, Drop: 291, Color: RGB{R: 226, G: 113, B: 55}, HasColor: true},
		},
		{
			Name:     "linden",
			Keywords: []string{"linden", "tilia"},
			Band:     Band{Onset: 270, Peak: 289, Drop: 307, Color: RGB{R: 232, G: 191, B: 82}, HasColor: true},
		},
		{
			Name:     "evergreen",
			Keywords: []string{"pine", "spruce", "fir", "cedar", "juniper", "hemlock", "yew", "cypress", "pinus", "picea", "abies", "thuja", "tsuga"},
			Band:     Band{Onset: 306, Peak: 336, Drop: 366, Color: RGB{R: 58, G: 86, B: 58}, HasColor: true},
		},
	}
}
