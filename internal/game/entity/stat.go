package entity

import (
	"time"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
)

// Number is the set of numeric types a Stat may hold.
type Number interface {
	~int | ~float64
}

// Stat is a player attribute composed of a base value, a permanent increment
// from upgrades and a temporary boost.
//
// Invariant: the boost contributes to Value only while its expiry cooldown is
// COOLING; a new boost is refused while one is active, so repeated pickups
// never stack.
type Stat[T Number] struct {
	Base      T
	Increment T

	clock  cooldown.Clock
	boost  T
	expiry *cooldown.Handler
}

func newStat[T Number](base T, clock cooldown.Clock) Stat[T] {
	return Stat[T]{Base: base, clock: clock, expiry: cooldown.New(clock, 0)}
}

// Value returns Base + Increment, plus the boost while it is active.
func (s *Stat[T]) Value() T {
	v := s.Base + s.Increment
	if s.BoostActive() {
		v += s.boost
	}
	return v
}

// Permanent returns Base + Increment.
func (s *Stat[T]) Permanent() T {
	return s.Base + s.Increment
}

// BoostActive reports whether a temporary boost is currently applied.
func (s *Stat[T]) BoostActive() bool {
	return !s.expiry.IsActionReady()
}

// Boost applies a temporary boost of amount for d.
//
// Postcondition: Returns false and changes nothing when a boost is already
// active or d <= 0; otherwise the boost lasts exactly d.
func (s *Stat[T]) Boost(amount T, d time.Duration) bool {
	if d <= 0 || s.BoostActive() {
		return false
	}
	s.boost = amount
	s.expiry = cooldown.New(s.clock, d)
	s.expiry.PutOnCooldown()
	return true
}
