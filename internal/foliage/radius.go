package foliage

import "math"

// Display radius bounds in render units.
const (
	MinRadius     = 2.0
	MaxRadius     = 24.0
	DefaultRadius = 4.0

	radiusScale    = 2.2
	radiusExponent = 0.55
)

// Radius maps trunk diameter in centimeters to a display radius.
// Monotonic power curve clamped to [MinRadius, MaxRadius]; unknown
// diameters (zero or negative) get DefaultRadius.
func Radius(diameterCM float64) float64 {
	if diameterCM <= 0 {
		return DefaultRadius
	}
	r := radiusScale * math.Pow(diameterCM, radiusExponent)
	if r < MinRadius {
		return MinRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}
