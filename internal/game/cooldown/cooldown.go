// Package cooldown provides the time-gating primitive shared by attacks,
// spawning, leveling and temporary buffs, plus the clocks it reads.
package cooldown

import "time"

// Handler gates an action behind a fixed duration.
//
// A Handler is READY when the clock has reached its ready-at time and COOLING
// otherwise. The zero ready-at makes a new Handler READY. There is no terminal
// state; a Handler may be put on cooldown any number of times.
type Handler struct {
	clock    Clock
	duration time.Duration
	readyAt  time.Time
}

// New creates a READY Handler with the given duration.
//
// Precondition: clock must be non-nil; duration >= 0.
func New(clock Clock, duration time.Duration) *Handler {
	return &Handler{clock: clock, duration: duration}
}

// IsActionReady reports whether now >= ready-at. It has no side effects.
func (h *Handler) IsActionReady() bool {
	return !h.clock.Now().Before(h.readyAt)
}

// PutOnCooldown sets ready-at to now + duration.
//
// Postcondition: IsActionReady returns false until duration has elapsed (for duration > 0).
func (h *Handler) PutOnCooldown() {
	h.readyAt = h.clock.Now().Add(h.duration)
}

// TryAct puts the handler on cooldown and returns true when it is ready;
// otherwise it returns false and leaves the handler untouched.
func (h *Handler) TryAct() bool {
	if !h.IsActionReady() {
		return false
	}
	h.PutOnCooldown()
	return true
}

// Reset makes the handler READY immediately.
func (h *Handler) Reset() {
	h.readyAt = time.Time{}
}

// Remaining returns the time left until the handler is READY, or 0.
func (h *Handler) Remaining() time.Duration {
	d := h.readyAt.Sub(h.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// Duration returns the configured cooldown duration.
func (h *Handler) Duration() time.Duration {
	return h.duration
}
