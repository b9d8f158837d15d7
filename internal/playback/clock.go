package playback

import (
	"sync"
	"time"
)

// State is the clock's transport state.
type State string

const (
	StatePaused  State = "paused"
	StatePlaying State = "playing"
)

// DefaultLoopSeconds is how long one full window sweep takes at
// speed 1 when no loop duration is configured.
const DefaultLoopSeconds = 60.0

// Snapshot is an immutable copy of the clock used for frame
// evaluation and publishing.
type Snapshot struct {
	DOY      float64 `json:"doy"`
	Playing  bool    `json:"playing"`
	Speed    float64 `json:"speed"`
	StartDOY int     `json:"start_doy"`
	EndDOY   int     `json:"end_doy"`
}

// Clock advances a simulated day of year over wall-clock time. It
// is a two-state machine, Paused and Playing; Tick is the only
// time-driven mutation, everything else is an explicit transport
// command. All methods are safe for concurrent use.
type Clock struct {
	mu sync.Mutex

	state       State
	current     float64
	startDOY    int
	endDOY      int
	speed       float64
	loopSeconds float64

	lastTick time.Time
	now      func() time.Time
}

// NewClock builds a paused clock positioned at startDOY. Inputs
// are normalized so the rate math stays finite: a non-positive
// loop duration falls back to the default and a degenerate window
// is widened by one day.
func NewClock(startDOY, endDOY int, loopSeconds float64) *Clock {
	if loopSeconds <= 0 {
		loopSeconds = DefaultLoopSeconds
	}
	if endDOY <= startDOY {
		endDOY = startDOY + 1
	}
	return &Clock{
		state:       StatePaused,
		current:     float64(startDOY),
		startDOY:    startDOY,
		endDOY:      endDOY,
		speed:       1,
		loopSeconds: loopSeconds,
		now:         time.Now,
	}
}

// Play starts advancement. The last-tick reference resets so time
// spent paused never contributes to the first tick after. No-op
// when already playing.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePlaying {
		return
	}
	c.state = StatePlaying
	c.lastTick = c.now()
}

// Pause freezes the clock at its current day. Ticks while paused
// do nothing.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StatePaused
}

// SetSpeed changes the playback multiplier, taking effect on the
// next tick. Non-positive values are ignored.
func (c *Clock) SetSpeed(multiplier float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if multiplier <= 0 {
		return
	}
	c.speed = multiplier
}

// Seek jumps to a day, clamped into the window, in either state
// without changing it. A playing clock keeps billing elapsed wall
// time, so the jump is never applied twice.
func (c *Clock) Seek(doy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.clamp(doy)
}

// Reset pauses and rewinds to the window start.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StatePaused
	c.current = float64(c.startDOY)
}

// Tick advances the simulated day by elapsed wall seconds. Paused
// clocks and non-positive elapsed values are no-ops. Reaching the
// window end wraps to exactly the start, looping playback.
func (c *Clock) Tick(elapsedSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked(elapsedSeconds)
}

func (c *Clock) tickLocked(elapsedSeconds float64) {
	if c.state != StatePlaying || elapsedSeconds <= 0 {
		return
	}
	rate := float64(c.endDOY-c.startDOY) / c.loopSeconds * c.speed
	c.current += rate * elapsedSeconds
	if c.current >= float64(c.endDOY) {
		c.current = float64(c.startDOY)
	}
}

// Advance is the wall-clock entry point: it bills the time since
// the previous Play or Advance and ticks once. Paused clocks are
// left untouched.
func (c *Clock) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return
	}
	now := c.now()
	elapsed := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	c.tickLocked(elapsed)
}

// Snapshot returns a copy of the current clock state.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		DOY:      c.current,
		Playing:  c.state == StatePlaying,
		Speed:    c.speed,
		StartDOY: c.startDOY,
		EndDOY:   c.endDOY,
	}
}

func (c *Clock) clamp(doy float64) float64 {
	if doy < float64(c.startDOY) {
		return float64(c.startDOY)
	}
	if doy > float64(c.endDOY) {
		return float64(c.endDOY)
	}
	return doy
}
