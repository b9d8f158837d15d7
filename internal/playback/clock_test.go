package playback

import (
	"math"
	"testing"
	"time"
)

// fakeTime stands in for the wall clock so elapsed billing is
// exact.
type fakeTime struct {
	t time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{t: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func (f *fakeTime) now() time.Time { return f.t }

// testClock sweeps a 60 day window in 60 seconds, so speed 1 moves
// one day per wall second.
func testClock() *Clock {
	return NewClock(100, 160, 60)
}

func TestClockStartsPausedAtWindowStart(t *testing.T) {
	c := testClock()

	snap := c.Snapshot()
	if snap.Playing {
		t.Error("new clock should be paused")
	}
	if snap.DOY != 100 {
		t.Errorf("doy = %v, want window start 100", snap.DOY)
	}
	if snap.Speed != 1 {
		t.Errorf("speed = %v, want 1", snap.Speed)
	}
}

func TestClockTickWhilePausedIsNoop(t *testing.T) {
	c := testClock()

	c.Tick(10)
	if snap := c.Snapshot(); snap.DOY != 100 {
		t.Errorf("doy = %v, want unchanged 100", snap.DOY)
	}
}

func TestClockTickAdvancesAtRate(t *testing.T) {
	c := testClock()
	c.Play()

	c.Tick(2.5)
	if snap := c.Snapshot(); math.Abs(snap.DOY-102.5) > 1e-9 {
		t.Errorf("doy = %v, want 102.5", snap.DOY)
	}
}

func TestClockSpeedMultiplier(t *testing.T) {
	c := testClock()
	c.Play()

	c.SetSpeed(2)
	c.Tick(1)
	if snap := c.Snapshot(); math.Abs(snap.DOY-102) > 1e-9 {
		t.Errorf("doy = %v, want 102 at double speed", snap.DOY)
	}

	// Invalid multipliers are ignored.
	c.SetSpeed(0)
	c.SetSpeed(-3)
	if snap := c.Snapshot(); snap.Speed != 2 {
		t.Errorf("speed = %v, want 2 after rejecting bad values", snap.Speed)
	}
}

func TestClockNegativeElapsedIgnored(t *testing.T) {
	c := testClock()
	c.Play()

	c.Tick(-1)
	c.Tick(0)
	if snap := c.Snapshot(); snap.DOY != 100 {
		t.Errorf("doy = %v, want unchanged 100", snap.DOY)
	}
}

func TestClockWrapsToExactStart(t *testing.T) {
	c := testClock()
	c.Play()
	c.Seek(159.5)

	c.Tick(1)
	snap := c.Snapshot()
	if snap.DOY != 100 {
		t.Errorf("doy = %v, want exact wrap to 100", snap.DOY)
	}
	if !snap.Playing {
		t.Error("wrap should not stop playback")
	}
}

func TestClockWrapAtExactBoundary(t *testing.T) {
	c := testClock()
	c.Play()
	c.Seek(159)

	c.Tick(1)
	if snap := c.Snapshot(); snap.DOY != 100 {
		t.Errorf("doy = %v, want wrap when landing exactly on the end", snap.DOY)
	}
}

func TestClockSeekClamps(t *testing.T) {
	c := testClock()

	c.Seek(50)
	if snap := c.Snapshot(); snap.DOY != 100 {
		t.Errorf("seek below window = %v, want clamp to 100", snap.DOY)
	}

	c.Seek(999)
	if snap := c.Snapshot(); snap.DOY != 160 {
		t.Errorf("seek above window = %v, want clamp to 160", snap.DOY)
	}

	c.Seek(130.25)
	if snap := c.Snapshot(); snap.DOY != 130.25 {
		t.Errorf("in-window seek = %v, want 130.25", snap.DOY)
	}
}

func TestClockSeekKeepsState(t *testing.T) {
	c := testClock()

	c.Seek(120)
	if snap := c.Snapshot(); snap.Playing {
		t.Error("seek should not start a paused clock")
	}

	c.Play()
	c.Seek(140)
	if snap := c.Snapshot(); !snap.Playing {
		t.Error("seek should not stop a playing clock")
	}
}

func TestClockReset(t *testing.T) {
	c := testClock()
	c.Play()
	c.Tick(20)

	c.Reset()
	snap := c.Snapshot()
	if snap.Playing {
		t.Error("reset should pause")
	}
	if snap.DOY != 100 {
		t.Errorf("doy = %v, want window start after reset", snap.DOY)
	}
}

func TestClockPauseFreezes(t *testing.T) {
	c := testClock()
	c.Play()
	c.Tick(5)
	c.Pause()

	c.Tick(5)
	if snap := c.Snapshot(); math.Abs(snap.DOY-105) > 1e-9 {
		t.Errorf("doy = %v, want frozen at 105", snap.DOY)
	}
}

func TestClockAdvanceBillsWallTime(t *testing.T) {
	ft := newFakeTime()
	c := testClock()
	c.now = ft.now

	c.Play()
	ft.advance(3 * time.Second)
	c.Advance()
	if snap := c.Snapshot(); math.Abs(snap.DOY-103) > 1e-9 {
		t.Errorf("doy = %v, want 103 after 3 wall seconds", snap.DOY)
	}
}

func TestClockPausedTimeNotBilled(t *testing.T) {
	ft := newFakeTime()
	c := testClock()
	c.now = ft.now

	c.Play()
	ft.advance(1 * time.Second)
	c.Advance()

	c.Pause()
	ft.advance(100 * time.Second)
	c.Advance()

	c.Play()
	ft.advance(1 * time.Second)
	c.Advance()

	// Two billed seconds total; the paused century is free.
	if snap := c.Snapshot(); math.Abs(snap.DOY-102) > 1e-9 {
		t.Errorf("doy = %v, want 102", snap.DOY)
	}
}

func TestClockPlayWhilePlayingIsNoop(t *testing.T) {
	ft := newFakeTime()
	c := testClock()
	c.now = ft.now

	c.Play()
	ft.advance(2 * time.Second)

	// A second Play must not reset the tick reference.
	c.Play()
	c.Advance()
	if snap := c.Snapshot(); math.Abs(snap.DOY-102) > 1e-9 {
		t.Errorf("doy = %v, want 102 with both seconds billed", snap.DOY)
	}
}

func TestClockSeekWhilePlayingNotDoubleApplied(t *testing.T) {
	ft := newFakeTime()
	c := testClock()
	c.now = ft.now

	c.Play()
	ft.advance(1 * time.Second)
	c.Advance()

	c.Seek(150)
	ft.advance(1 * time.Second)
	c.Advance()

	// One second after the seek target, not one second plus the
	// pre-seek position.
	if snap := c.Snapshot(); math.Abs(snap.DOY-151) > 1e-9 {
		t.Errorf("doy = %v, want 151", snap.DOY)
	}
}

func TestClockNormalizesBadConstruction(t *testing.T) {
	c := NewClock(200, 200, -5)
	c.Play()
	c.Tick(1)

	snap := c.Snapshot()
	if math.IsNaN(snap.DOY) || math.IsInf(snap.DOY, 0) {
		t.Fatalf("doy = %v, want finite", snap.DOY)
	}
	if snap.EndDOY <= snap.StartDOY {
		t.Errorf("window = [%d, %d], want widened", snap.StartDOY, snap.EndDOY)
	}
}
