package animator

import (
	"runtime"
	"sync"

	"github.com/foliolab/foliage-platform/internal/foliage"
	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
)

// EvaluateColors renders every entity's RGBA at the given simulated
// day. Entities are split into per-CPU chunks joined by a WaitGroup;
// the shade function is pure, so workers share the lookup without
// locks. The result is packed RGBA quads in entity order.
func EvaluateColors(lookup *phenology.Lookup, entities []inventory.Entity, doy float64) []byte {
	out := make([]byte, len(entities)*4)
	if len(entities) == 0 {
		return out
	}

	workers := runtime.NumCPU()
	if workers > len(entities) {
		workers = len(entities)
	}
	chunk := (len(entities) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(entities); start += chunk {
		end := start + chunk
		if end > len(entities) {
			end = len(entities)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				c := foliage.Shade(lookup.ForIndex(i), doy, entities[i].OffsetDays)
				out[i*4+0] = c.R
				out[i*4+1] = c.G
				out[i*4+2] = c.B
				out[i*4+3] = c.A
			}
		}(start, end)
	}
	wg.Wait()

	return out
}

// PackPositions flattens entity coordinates into lng/lat pairs in
// entity order for the descriptor codec.
func PackPositions(entities []inventory.Entity) []float32 {
	out := make([]float32, len(entities)*2)
	for i, e := range entities {
		out[i*2] = float32(e.Lng)
		out[i*2+1] = float32(e.Lat)
	}
	return out
}

// PackRadii computes the display radius per entity in entity order.
func PackRadii(entities []inventory.Entity) []float32 {
	out := make([]float32, len(entities))
	for i, e := range entities {
		out[i] = float32(foliage.Radius(e.DiameterCM))
	}
	return out
}
