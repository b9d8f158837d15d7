package schema

import "time"

// Control actions understood by the animator
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
	ActionSpeed = "speed"
	ActionReset = "reset"
)

// ReferenceYear anchors day-of-year values to calendar dates. A
// leap year, so day 366 stays addressable.
const ReferenceYear = 2024

// GeoPoint is a WGS84 coordinate pair
type GeoPoint struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Descriptor is the retained dataset announcement renderers boot
// from. Positions hold packed lng/lat float32 pairs and Radii the
// packed display radius per entity, both encoded with
// EncodeFloat32s in entity order.
type Descriptor struct {
	Dataset     string    `json:"dataset"`
	Session     string    `json:"session"`
	EntityCount int       `json:"entity_count"`
	Species     []string  `json:"species"`
	Positions   string    `json:"positions"`
	Radii       string    `json:"radii"`
	Centroid    *GeoPoint `json:"centroid,omitempty"`
	StartDOY    int       `json:"start_doy"`
	EndDOY      int       `json:"end_doy"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Daylight is astronomical context for a simulated date
type Daylight struct {
	Date         string  `json:"date"`
	DayLengthMin float64 `json:"day_length_min"`
	NoonAltitude float64 `json:"noon_altitude_deg"`
	Sunrise      string  `json:"sunrise,omitempty"`
	Sunset       string  `json:"sunset,omitempty"`
}

// Frame is one animation frame: packed RGBA colors for every
// entity at a simulated day, encoded with EncodeColors in entity
// order.
type Frame struct {
	Dataset  string    `json:"dataset"`
	Session  string    `json:"session"`
	Seq      uint64    `json:"seq"`
	DOY      float64   `json:"doy"`
	Date     string    `json:"date"`
	Playing  bool      `json:"playing"`
	Speed    float64   `json:"speed"`
	Count    int       `json:"count"`
	Colors   string    `json:"colors"`
	Daylight *Daylight `json:"daylight,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// ControlCommand is a transport command for a dataset's clock.
// Value carries the seek day or the speed multiplier.
type ControlCommand struct {
	Action string    `json:"action"`
	Value  float64   `json:"value,omitempty"`
	Origin string    `json:"origin,omitempty"`
	SentAt time.Time `json:"sent_at,omitempty"`
}

// ClockState is the retained transport state snapshot
type ClockState struct {
	Dataset   string    `json:"dataset"`
	Session   string    `json:"session"`
	DOY       float64   `json:"doy"`
	Playing   bool      `json:"playing"`
	Speed     float64   `json:"speed"`
	StartDOY  int       `json:"start_doy"`
	EndDOY    int       `json:"end_doy"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimelineEvent is one control audit record
type TimelineEvent struct {
	Action string    `json:"action"`
	Value  float64   `json:"value,omitempty"`
	DOY    float64   `json:"doy"`
	At     time.Time `json:"at"`
}

// DOYDate renders a day-of-year as a short calendar label like
// "Oct 12", using the reference year.
func DOYDate(doy float64) string {
	return DOYTime(doy).Format("Jan 2")
}

// DOYTime returns the reference-year noon timestamp for a day of
// year, UTC. Out-of-domain days clamp into [1, 366].
func DOYTime(doy float64) time.Time {
	d := int(doy)
	if d < 1 {
		d = 1
	}
	if d > 366 {
		d = 366
	}
	return time.Date(ReferenceYear, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
}
