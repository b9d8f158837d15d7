package animator

import (
	"sync"
	"time"
)

// Throttle coalesces forced frame publishes. Control commands request
// a flush; the frame loop consumes at most one request per window, and
// requests landing inside the window pile onto the next flush. Latest
// wins because frames always render from the current clock snapshot.
type Throttle struct {
	mu      sync.Mutex
	window  time.Duration
	last    time.Time
	pending bool
}

// NewThrottle creates a throttle with the given window. A zero or
// negative window disables rate limiting.
func NewThrottle(windowMs int) *Throttle {
	if windowMs < 0 {
		windowMs = 0
	}
	return &Throttle{
		window: time.Duration(windowMs) * time.Millisecond,
	}
}

// Request asks for a forced publish.
func (t *Throttle) Request() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = true
}

// Consume reports whether a pending request may fire now. A request
// still inside the window stays pending for a later Consume.
func (t *Throttle) Consume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		return false
	}

	now := time.Now()
	if now.Sub(t.last) < t.window {
		return false
	}

	t.last = now
	t.pending = false
	return true
}
