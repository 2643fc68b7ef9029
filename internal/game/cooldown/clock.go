package cooldown

import (
	"sync"
	"time"
)

// Clock is the monotonic time source every cooldown reads.
type Clock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// SystemClock is a pausable real-time clock.
// While paused, Now is frozen; time spent paused never elapses for cooldowns.
// It is safe for concurrent use.
type SystemClock struct {
	mu          sync.Mutex
	start       time.Time
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
}

// NewSystemClock creates a running SystemClock.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns real time minus the total time spent paused.
func (c *SystemClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.pausedAt.Add(-c.pausedTotal)
	}
	return time.Now().Add(-c.pausedTotal)
}

// Pause freezes the clock. Calling Pause on a paused clock is a no-op.
func (c *SystemClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = time.Now()
}

// Resume restarts a paused clock. Calling Resume on a running clock is a no-op.
func (c *SystemClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.pausedTotal += time.Since(c.pausedAt)
	c.paused = false
}

// Paused reports whether the clock is frozen.
func (c *SystemClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// ManualClock only moves when Advance is called. Intended for tests and
// deterministic stepping.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the frozen time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
//
// Precondition: d >= 0.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
