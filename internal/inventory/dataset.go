package inventory

import (
	"math/rand"
	"sort"
	"strings"
)

// Entity is one positioned tree in a dataset. OffsetDays shifts its
// seasonal curve relative to the shared timing band and stays stable
// for the lifetime of the dataset.
type Entity struct {
	ID         string
	Species    string
	Lng        float64
	Lat        float64
	DiameterCM float64
	OffsetDays int
}

// Record is a raw inventory row before offsets are assigned.
// OffsetDays is nil when the source carried no explicit offset.
type Record struct {
	ID         string
	Species    string
	Lng        float64
	Lat        float64
	DiameterCM float64
	OffsetDays *int
}

// Dataset is a named tree inventory ready for animation. Species holds
// the sorted unique species names; frame colors are positional over
// Entities, so entity order is part of the dataset contract.
type Dataset struct {
	Name        string
	Species     []string
	Entities    []Entity
	CentroidLng float64
	CentroidLat float64
}

// MaxOffsetRange caps the half-width of generated per-entity offsets.
const MaxOffsetRange = 7

// NewDataset builds a dataset from raw records. Records without an
// explicit offset get one drawn from a seeded RNG over
// [-offsetRange, offsetRange], so the same seed always yields the same
// canopy texture. Records are kept in input order.
func NewDataset(name string, records []Record, seed int64, offsetRange int) *Dataset {
	if offsetRange < 0 {
		offsetRange = 0
	}
	if offsetRange > MaxOffsetRange {
		offsetRange = MaxOffsetRange
	}

	rng := rand.New(rand.NewSource(seed))

	entities := make([]Entity, 0, len(records))
	for _, rec := range records {
		entity := Entity{
			ID:         rec.ID,
			Species:    rec.Species,
			Lng:        rec.Lng,
			Lat:        rec.Lat,
			DiameterCM: rec.DiameterCM,
		}
		if rec.OffsetDays != nil {
			entity.OffsetDays = *rec.OffsetDays
		} else {
			// Draw only for missing offsets so explicit rows never
			// perturb the sequence of generated ones.
			entity.OffsetDays = rng.Intn(2*offsetRange+1) - offsetRange
		}
		entities = append(entities, entity)
	}

	return fromEntities(name, entities)
}

// fromEntities derives the species list and centroid shared by every
// dataset constructor.
func fromEntities(name string, entities []Entity) *Dataset {
	ds := &Dataset{
		Name:     strings.TrimSpace(name),
		Entities: entities,
	}

	seen := make(map[string]bool)
	for _, e := range entities {
		if !seen[e.Species] {
			seen[e.Species] = true
			ds.Species = append(ds.Species, e.Species)
		}
		ds.CentroidLng += e.Lng
		ds.CentroidLat += e.Lat
	}
	sort.Strings(ds.Species)

	if n := float64(len(entities)); n > 0 {
		ds.CentroidLng /= n
		ds.CentroidLat /= n
	}

	return ds
}

// SpeciesNames returns one species name per entity, aligned with the
// entity order, for building a resolution lookup.
func (d *Dataset) SpeciesNames() []string {
	names := make([]string, len(d.Entities))
	for i, e := range d.Entities {
		names[i] = e.Species
	}
	return names
}
