package animator

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/foliolab/foliage-platform/internal/foliage"
	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/pkg/schema"
)

func testDataset(n int) *inventory.Dataset {
	species := []string{"Acer rubrum", "Quercus robur", "Betula pendula", "Pinus sylvestris", "Unknownus"}

	records := make([]inventory.Record, n)
	for i := range records {
		records[i] = inventory.Record{
			ID:         fmt.Sprintf("t-%04d", i),
			Species:    species[i%len(species)],
			Lng:        24.9 + float64(i)*0.0001,
			Lat:        60.1 + float64(i)*0.0001,
			DiameterCM: float64(10 + i%50),
		}
	}

	return inventory.NewDataset("frame-test", records, 42, 5)
}

func TestEvaluateColorsMatchesSerialShade(t *testing.T) {
	ds := testDataset(257) // odd size so chunks stay uneven
	resolver := phenology.NewResolver(nil)
	lookup := phenology.BuildLookup(resolver, ds.SpeciesNames())

	for _, doy := range []float64{200, 285.5, 310, 330} {
		got := EvaluateColors(lookup, ds.Entities, doy)

		want := make([]byte, len(ds.Entities)*4)
		for i, e := range ds.Entities {
			c := foliage.Shade(lookup.ForIndex(i), doy, e.OffsetDays)
			want[i*4+0] = c.R
			want[i*4+1] = c.G
			want[i*4+2] = c.B
			want[i*4+3] = c.A
		}

		if !bytes.Equal(got, want) {
			t.Errorf("day %v: parallel evaluation differs from serial", doy)
		}
	}
}

func TestEvaluateColorsDeterministic(t *testing.T) {
	ds := testDataset(100)
	resolver := phenology.NewResolver(nil)
	lookup := phenology.BuildLookup(resolver, ds.SpeciesNames())

	a := EvaluateColors(lookup, ds.Entities, 290)
	b := EvaluateColors(lookup, ds.Entities, 290)
	if !bytes.Equal(a, b) {
		t.Error("same day produced different frame bytes")
	}
}

func TestEvaluateColorsEmpty(t *testing.T) {
	resolver := phenology.NewResolver(nil)
	lookup := phenology.BuildLookup(resolver, nil)

	got := EvaluateColors(lookup, nil, 290)
	if len(got) != 0 {
		t.Errorf("empty dataset produced %d bytes", len(got))
	}
}

func TestEvaluateColorsRoundTripCodec(t *testing.T) {
	ds := testDataset(33)
	resolver := phenology.NewResolver(nil)
	lookup := phenology.BuildLookup(resolver, ds.SpeciesNames())

	raw := EvaluateColors(lookup, ds.Entities, 295)
	encoded := schema.EncodeColors(raw)

	decoded, err := schema.DecodeColors(encoded, len(ds.Entities))
	if err != nil {
		t.Fatalf("DecodeColors failed: %v", err)
	}
	if !bytes.Equal(raw, decoded) {
		t.Error("codec round trip changed frame bytes")
	}

	if _, err := schema.DecodeColors(encoded, len(ds.Entities)+1); err == nil {
		t.Error("expected count mismatch error")
	}
}

func TestPackPositionsOrder(t *testing.T) {
	entities := []inventory.Entity{
		{ID: "a", Lng: 24.1, Lat: 60.2},
		{ID: "b", Lng: 25.3, Lat: 61.4},
	}

	packed := PackPositions(entities)
	if len(packed) != 4 {
		t.Fatalf("packed length = %d, want 4", len(packed))
	}

	want := []float32{24.1, 60.2, 25.3, 61.4}
	for i, v := range want {
		if packed[i] != v {
			t.Errorf("packed[%d] = %v, want %v", i, packed[i], v)
		}
	}

	decoded, err := schema.DecodeFloat32s(schema.EncodeFloat32s(packed))
	if err != nil {
		t.Fatalf("DecodeFloat32s failed: %v", err)
	}
	for i, v := range want {
		if decoded[i] != v {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], v)
		}
	}
}

func TestPackRadiiUsesDisplayRadius(t *testing.T) {
	entities := []inventory.Entity{
		{ID: "a", DiameterCM: 40},
		{ID: "b", DiameterCM: 0},
	}

	packed := PackRadii(entities)
	if len(packed) != 2 {
		t.Fatalf("packed length = %d, want 2", len(packed))
	}

	if packed[0] != float32(foliage.Radius(40)) {
		t.Errorf("radius = %v, want %v", packed[0], foliage.Radius(40))
	}
	if packed[1] != float32(foliage.DefaultRadius) {
		t.Errorf("zero diameter radius = %v, want default %v", packed[1], foliage.DefaultRadius)
	}
}
