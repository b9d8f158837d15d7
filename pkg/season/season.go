package season

import (
	"math"
	"time"

	"github.com/foliolab/foliage-platform/pkg/schema"
	"github.com/sixdouglas/suncalc"
)

// Summarize derives the astronomical context for a simulated day of year
// at the given coordinates. Dates are anchored to the reference year so
// day 366 resolves to a real calendar day.
func Summarize(dayOfYear float64, lat, lng float64) schema.Daylight {
	noon := schema.DOYTime(dayOfYear)
	times := suncalc.GetTimes(noon, lat, lng)

	solarNoon := times[suncalc.SolarNoon].Value
	if solarNoon.IsZero() {
		solarNoon = noon
	}

	d := schema.Daylight{
		Date:         schema.DOYDate(dayOfYear),
		NoonAltitude: altitudeDegrees(solarNoon, lat, lng),
	}

	sunrise := times[suncalc.Sunrise].Value
	sunset := times[suncalc.Sunset].Value

	// Polar day and polar night have no sunrise or sunset. The noon
	// altitude decides which one this is.
	if sunrise.IsZero() || sunset.IsZero() {
		if d.NoonAltitude > 0 {
			d.DayLengthMin = 24 * 60
		}
		return d
	}

	d.Sunrise = sunrise.UTC().Format("15:04")
	d.Sunset = sunset.UTC().Format("15:04")
	d.DayLengthMin = math.Round(sunset.Sub(sunrise).Minutes())
	return d
}

// altitudeDegrees converts the sun altitude at t from radians to degrees.
func altitudeDegrees(t time.Time, lat, lng float64) float64 {
	position := suncalc.GetPosition(t, lat, lng)
	return position.Altitude * (180.0 / math.Pi)
}
