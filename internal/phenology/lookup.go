package phenology

// Lookup holds the resolved timing for every species in a dataset,
// indexed by species index. It is built once after a dataset loads
// and is read-only afterward, so frame evaluation can share it
// across goroutines without locking.
type Lookup struct {
	resolutions []Resolution
}

// BuildLookup resolves each name in the species list. The scan
// tiers make this O(species x table rows); it runs once per load,
// never per frame.
func BuildLookup(r *Resolver, species []string) *Lookup {
	l := &Lookup{resolutions: make([]Resolution, len(species))}
	for i, name := range species {
		l.resolutions[i] = r.Resolve(name)
	}
	return l
}

// ForIndex returns the resolution for a species index, or nil when
// the index falls outside the species list. Callers treat nil as
// missing data.
func (l *Lookup) ForIndex(i int) *Resolution {
	if l == nil || i < 0 || i >= len(l.resolutions) {
		return nil
	}
	return &l.resolutions[i]
}

func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.resolutions)
}

// Resolutions exposes the backing slice for read-only iteration,
// species index order.
func (l *Lookup) Resolutions() []Resolution {
	if l == nil {
		return nil
	}
	return l.resolutions
}

// Summary counts how many species resolved through each tier.
type Summary struct {
	Total     int `json:"total"`
	Exact     int `json:"exact"`
	Fold      int `json:"fold"`
	Substring int `json:"substring"`
	Keyword   int `json:"keyword"`
	Default   int `json:"default"`
}

func (l *Lookup) Summary() Summary {
	s := Summary{Total: l.Len()}
	for i := range l.resolutions {
		switch l.resolutions[i].Source {
		case SourceExact:
			s.Exact++
		case SourceFold:
			s.Fold++
		case SourceSubstring:
			s.Substring++
		case SourceKeyword:
			s.Keyword++
		default:
			s.Default++
		}
	}
	return s
}
