package foliage

import (
	"math"
	"testing"

	"github.com/foliolab/foliage-platform/internal/phenology"
)

func crimsonResolution() *phenology.Resolution {
	return &phenology.Resolution{
		Species: "Acer rubrum",
		Band:    phenology.Band{Onset: 265, Peak: 285, Drop: 305},
		Color:   phenology.RGB{R: 220, G: 20, B: 60},
	}
}

func TestShadePhases(t *testing.T) {
	res := crimsonResolution()

	tests := []struct {
		name string
		doy  float64
		want RGBA
	}{
		{"deep dormant", 200, BaseGreen},
		{"day before onset", 264, BaseGreen},
		{"onset boundary", 265, BaseGreen},
		{"turning midpoint", 275, RGBA{R: 111, G: 73, B: 71, A: 214}},
		{"peak boundary", 285, RGBA{R: 220, G: 20, B: 60, A: 255}},
		{"senescing midpoint", 295, RGBA{R: 87, G: 37, B: 47, A: 176}},
		{"drop boundary", 305, BareBrown},
		{"fade midpoint", 308.5, RGBA{R: 21, G: 21, B: 21, A: 75}},
		{"fade complete", 312, Transparent},
		{"long past drop", 360, Transparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shade(res, tt.doy, 0)
			if got != tt.want {
				t.Errorf("Shade(%v) = %+v, want %+v", tt.doy, got, tt.want)
			}
		})
	}
}

func TestShadeMissingResolution(t *testing.T) {
	for _, doy := range []float64{1, 200, 285, 366} {
		if got := Shade(nil, doy, 0); got != MissingGray {
			t.Errorf("Shade(nil, %v) = %+v, want missing gray", doy, got)
		}
	}
}

func TestShadeOffsetShiftsCurve(t *testing.T) {
	res := crimsonResolution()

	// A +5 late-runner at day 268 sits at adjusted day 263, still
	// dormant; a -5 early-runner is already turning.
	if got := Shade(res, 268, 5); got != BaseGreen {
		t.Errorf("late offset = %+v, want base green", got)
	}
	if got := Shade(res, 268, -5); got == BaseGreen {
		t.Error("early offset should have started turning")
	}

	// Shifting both day and offset together cancels out.
	a := Shade(res, 290, 0)
	b := Shade(res, 295, 5)
	if a != b {
		t.Errorf("shifted evaluation differs: %+v vs %+v", a, b)
	}
}

func TestShadeContinuityAtBoundaries(t *testing.T) {
	res := crimsonResolution()
	const eps = 1e-6

	for _, boundary := range []float64{265, 285, 305} {
		before := Shade(res, boundary-eps, 0)
		after := Shade(res, boundary+eps, 0)
		if channelGap(before, after) > 1 {
			t.Errorf("discontinuity at day %v: %+v vs %+v", boundary, before, after)
		}
	}
}

func channelGap(a, b RGBA) int {
	gap := 0
	for _, d := range []int{
		int(a.R) - int(b.R),
		int(a.G) - int(b.G),
		int(a.B) - int(b.B),
		int(a.A) - int(b.A),
	} {
		if d < 0 {
			d = -d
		}
		if d > gap {
			gap = d
		}
	}
	return gap
}

func TestShadeIsPure(t *testing.T) {
	res := crimsonResolution()

	first := Shade(res, 291.37, -3)
	for i := 0; i < 50; i++ {
		if got := Shade(res, 291.37, -3); got != first {
			t.Fatalf("call %d returned %+v, first returned %+v", i, got, first)
		}
	}
}

func TestShadeZeroWidthPhases(t *testing.T) {
	res := &phenology.Resolution{
		Band:  phenology.Band{Onset: 280, Peak: 280, Drop: 280},
		Color: phenology.RGB{R: 220, G: 20, B: 60},
	}

	if got := Shade(res, 279.9, 0); got != BaseGreen {
		t.Errorf("before instant band = %+v, want base green", got)
	}
	// At the shared milestone the canopy is already dropped, day
	// zero of the fade.
	if got := Shade(res, 280, 0); got != BareBrown {
		t.Errorf("at instant band = %+v, want bare brown", got)
	}
	if got := Shade(res, 287, 0); got != Transparent {
		t.Errorf("a week later = %+v, want transparent", got)
	}
}

func TestShadeNeverNaN(t *testing.T) {
	bands := []phenology.Band{
		{Onset: 280, Peak: 280, Drop: 320},
		{Onset: 280, Peak: 320, Drop: 320},
		{Onset: 280, Peak: 280, Drop: 280},
	}
	for _, band := range bands {
		res := &phenology.Resolution{Band: band, Color: phenology.RGB{R: 200, G: 100, B: 50}}
		for doy := 270.0; doy <= 335; doy += 0.5 {
			Shade(res, doy, 0)
			if p := progress(doy, float64(band.Onset), float64(band.Peak)); math.IsNaN(p) {
				t.Fatalf("turning progress NaN for band %+v at %v", band, doy)
			}
			if p := progress(doy, float64(band.Peak), float64(band.Drop)); math.IsNaN(p) {
				t.Fatalf("senescing progress NaN for band %+v at %v", band, doy)
			}
		}
	}
}

func TestRadiusContract(t *testing.T) {
	if got := Radius(0); got != DefaultRadius {
		t.Errorf("Radius(0) = %v, want default %v", got, DefaultRadius)
	}
	if got := Radius(-3); got != DefaultRadius {
		t.Errorf("Radius(-3) = %v, want default %v", got, DefaultRadius)
	}

	// Monotonic over the sensible diameter range.
	prev := 0.0
	for d := 0.5; d <= 300; d += 0.5 {
		r := Radius(d)
		if r < prev {
			t.Fatalf("Radius not monotonic at %v: %v < %v", d, r, prev)
		}
		if r < MinRadius || r > MaxRadius {
			t.Fatalf("Radius(%v) = %v outside [%v, %v]", d, r, MinRadius, MaxRadius)
		}
		prev = r
	}

	// Big veterans clamp at the ceiling.
	if got := Radius(1000); got != MaxRadius {
		t.Errorf("Radius(1000) = %v, want clamp %v", got, MaxRadius)
	}
}
