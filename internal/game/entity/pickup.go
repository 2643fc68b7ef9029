package entity

import (
	"fmt"
	"time"
)

// PickupKind tags the effect of a Pickup.
type PickupKind string

const (
	ExperienceGem PickupKind = "experience"
	SpeedGem      PickupKind = "speed"
	DamageGem     PickupKind = "damage"
	DefenceGem    PickupKind = "defence"
	HealthGem     PickupKind = "health"
)

// PickupKinds lists every pickup kind in a stable order.
func PickupKinds() []PickupKind {
	return []PickupKind{ExperienceGem, SpeedGem, DamageGem, DefenceGem, HealthGem}
}

// Valid reports whether k is a known pickup kind.
func (k PickupKind) Valid() bool {
	switch k {
	case ExperienceGem, SpeedGem, DamageGem, DefenceGem, HealthGem:
		return true
	}
	return false
}

// Pickup is a collectible dropped by a dead monster.
//
// Every pickup grants its experience Amount; buff kinds additionally apply
// Boost for Duration, and the health kind heals Boost instantly.
type Pickup struct {
	Body
	kind     PickupKind
	amount   int
	boost    float64
	duration time.Duration
}

// NewPickup creates a pickup of kind at pos.
//
// Precondition: kind.Valid().
func NewPickup(kind PickupKind, pos Vec, amount int, boost float64, duration time.Duration) *Pickup {
	return &Pickup{
		Body:     newBody("", pos, PickupSize),
		kind:     kind,
		amount:   amount,
		boost:    boost,
		duration: duration,
	}
}

// PickupState is the persisted form of a Pickup.
type PickupState struct {
	ID       string
	Kind     PickupKind
	Position Vec
	Amount   int
	Boost    float64
	Duration time.Duration
}

// State returns the persisted form of p.
func (p *Pickup) State() PickupState {
	return PickupState{
		ID:       p.id,
		Kind:     p.kind,
		Position: p.pos,
		Amount:   p.amount,
		Boost:    p.boost,
		Duration: p.duration,
	}
}

// RestorePickup rebuilds a pickup from its persisted state.
func RestorePickup(s PickupState) (*Pickup, error) {
	if !s.Kind.Valid() {
		return nil, fmt.Errorf("unknown pickup kind %q", s.Kind)
	}
	if s.Amount < 0 {
		return nil, fmt.Errorf("amount must be >= 0, got %d", s.Amount)
	}
	if s.Duration < 0 {
		return nil, fmt.Errorf("duration must be >= 0, got %s", s.Duration)
	}
	return &Pickup{
		Body:     newBody(s.ID, s.Position, PickupSize),
		kind:     s.Kind,
		amount:   s.Amount,
		boost:    s.Boost,
		duration: s.Duration,
	}, nil
}

// Kind returns the pickup's effect tag.
func (p *Pickup) Kind() PickupKind { return p.kind }

// Amount returns the experience granted.
func (p *Pickup) Amount() int { return p.amount }

// Boost returns the boost magnitude.
func (p *Pickup) Boost() float64 { return p.boost }

// Duration returns how long a buff lasts.
func (p *Pickup) Duration() time.Duration { return p.duration }

// ApplyTo grants the pickup's effect to player.
func (p *Pickup) ApplyTo(player *Player) {
	if p.amount > 0 {
		player.GainExperience(p.amount)
	}
	switch p.kind {
	case SpeedGem:
		player.BoostSpeed(p.boost, p.duration)
	case DamageGem:
		player.BoostDamage(int(p.boost), p.duration)
	case DefenceGem:
		player.BoostDefence(int(p.boost), p.duration)
	case HealthGem:
		player.Heal(int(p.boost))
	}
}

func (p *Pickup) String() string {
	return fmt.Sprintf("Pickup(%s, amount=%d, pos=(%.1f, %.1f))", p.kind, p.amount, p.pos.X, p.pos.Y)
}
