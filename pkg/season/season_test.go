package season

import "testing"

const (
	helsinkiLat = 60.1695
	helsinkiLng = 24.9354
)

func TestSummarizeHelsinkiSolstices(t *testing.T) {
	summer := Summarize(173, helsinkiLat, helsinkiLng) // Jun 21
	winter := Summarize(356, helsinkiLat, helsinkiLng) // Dec 21

	if summer.Date != "Jun 21" {
		t.Errorf("summer date = %q, want Jun 21", summer.Date)
	}
	if winter.Date != "Dec 21" {
		t.Errorf("winter date = %q, want Dec 21", winter.Date)
	}

	// Helsinki midsummer runs about 19 hours, midwinter under 6.
	if summer.DayLengthMin < 17*60 || summer.DayLengthMin > 20*60 {
		t.Errorf("summer day length = %.0f min, want 17-20 hours", summer.DayLengthMin)
	}
	if winter.DayLengthMin < 4*60 || winter.DayLengthMin > 7*60 {
		t.Errorf("winter day length = %.0f min, want 4-7 hours", winter.DayLengthMin)
	}

	if summer.NoonAltitude <= winter.NoonAltitude {
		t.Errorf("noon altitude summer %.1f <= winter %.1f", summer.NoonAltitude, winter.NoonAltitude)
	}
	if summer.Sunrise == "" || summer.Sunset == "" {
		t.Errorf("summer sunrise/sunset missing: %q %q", summer.Sunrise, summer.Sunset)
	}
}

func TestSummarizeDayLengthGrowsTowardMidsummer(t *testing.T) {
	previous := Summarize(15, helsinkiLat, helsinkiLng)
	for _, doy := range []float64{74, 105, 135, 173} {
		current := Summarize(doy, helsinkiLat, helsinkiLng)
		if current.DayLengthMin <= previous.DayLengthMin {
			t.Fatalf("day %v length %.0f not longer than previous %.0f",
				doy, current.DayLengthMin, previous.DayLengthMin)
		}
		previous = current
	}
}

func TestSummarizeEquatorStaysNearTwelveHours(t *testing.T) {
	for _, doy := range []float64{1, 91, 182, 274, 366} {
		d := Summarize(doy, 0, 0)
		if d.DayLengthMin < 11*60 || d.DayLengthMin > 13*60 {
			t.Errorf("day %v equator length = %.0f min, want close to 12 hours", doy, d.DayLengthMin)
		}
	}
}

func TestSummarizePolarExtremes(t *testing.T) {
	// Longyearbyen sits well above the Arctic circle.
	const lat, lng = 78.2232, 15.6267

	midsummer := Summarize(173, lat, lng)
	if midsummer.DayLengthMin != 24*60 {
		t.Errorf("polar day length = %.0f min, want 1440", midsummer.DayLengthMin)
	}
	if midsummer.Sunrise != "" || midsummer.Sunset != "" {
		t.Errorf("polar day has sunrise/sunset: %q %q", midsummer.Sunrise, midsummer.Sunset)
	}

	midwinter := Summarize(356, lat, lng)
	if midwinter.DayLengthMin != 0 {
		t.Errorf("polar night length = %.0f min, want 0", midwinter.DayLengthMin)
	}
	if midwinter.NoonAltitude >= 0 {
		t.Errorf("polar night noon altitude = %.1f, want below horizon", midwinter.NoonAltitude)
	}
}
