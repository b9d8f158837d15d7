package foliage

import (
	"fmt"
	"math"

	"github.com/foliolab/foliage-platform/internal/phenology"
)

// RGBA is an 8-bit straight-alpha color as handed to renderers.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Hex renders the color as #RRGGBB, alpha dropped.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Canopy palette anchors.
var (
	BaseGreen   = RGBA{R: 74, G: 90, B: 74, A: 200}
	BareBrown   = RGBA{R: 42, G: 42, B: 42, A: 150}
	MissingGray = RGBA{R: 80, G: 80, B: 80, A: 100}
	Transparent = RGBA{}
)

// DropFadeDays is how long a dropped canopy takes to fade to fully
// transparent.
const DropFadeDays = 7.0

// Shade evaluates the canopy color for one entity at a simulated
// day of year. Pure and deterministic: identical inputs always
// produce identical output, so callers can key recomputation on
// the day value alone. A nil resolution renders as missing-data
// gray regardless of the day.
func Shade(res *phenology.Resolution, dayOfYear float64, offsetDays int) RGBA {
	if res == nil {
		return MissingGray
	}

	// Per-entity jitter shifts the whole curve, not the clock.
	adjusted := dayOfYear - float64(offsetDays)
	band := res.Band
	peak := RGBA{R: res.Color.R, G: res.Color.G, B: res.Color.B, A: 255}

	switch {
	case adjusted < float64(band.Onset):
		return BaseGreen
	case adjusted < float64(band.Peak):
		p := progress(adjusted, float64(band.Onset), float64(band.Peak))
		return lerp(BaseGreen, peak, p*p)
	case adjusted < float64(band.Drop):
		p := progress(adjusted, float64(band.Peak), float64(band.Drop))
		return lerp(peak, BareBrown, 1-(1-p)*(1-p))
	default:
		past := adjusted - float64(band.Drop)
		if past >= DropFadeDays {
			return Transparent
		}
		return lerp(BareBrown, Transparent, past/DropFadeDays)
	}
}

// progress maps v in [lo, hi] to [0, 1]. A zero-width span reads
// as already complete, so equal milestones never divide by zero.
func progress(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	p := (v - lo) / (hi - lo)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// lerp blends per channel in straight RGBA space, alpha treated
// like any other channel.
func lerp(a, b RGBA, t float64) RGBA {
	return RGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
