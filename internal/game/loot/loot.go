// Package loot implements the weighted pickup drop rolled when a monster dies.
package loot

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

// Outcome is the result of one drop roll. Drop is false for the no-drop band.
type Outcome struct {
	Drop bool
	Kind entity.PickupKind
}

// band maps the half-open percentile range [lo, hi) to an outcome.
type band struct {
	lo, hi  int
	outcome Outcome
}

// gem is the payload a pickup kind carries.
type gem struct {
	amount   int
	boost    float64
	duration time.Duration
}

// Table rolls a percentile in [0, 100) and maps it to an outcome band.
// Percentiles beyond the configured weights fall back to an experience gem.
type Table struct {
	bands []band
	gems  map[entity.PickupKind]gem
}

// NewTable builds the drop table from cfg.
//
// Precondition: cfg weights are non-negative and sum to <= 100.
// Postcondition: Returns a non-nil error when the weights are out of range.
func NewTable(cfg config.LootConfig) (*Table, error) {
	if total := cfg.TotalWeight(); total > 100 {
		return nil, fmt.Errorf("loot weights sum to %d, must be <= 100", total)
	}
	weights := []struct {
		w       int
		outcome Outcome
	}{
		{cfg.NoneWeight, Outcome{}},
		{cfg.ExperienceWeight, Outcome{Drop: true, Kind: entity.ExperienceGem}},
		{cfg.SpeedWeight, Outcome{Drop: true, Kind: entity.SpeedGem}},
		{cfg.DamageWeight, Outcome{Drop: true, Kind: entity.DamageGem}},
		{cfg.DefenceWeight, Outcome{Drop: true, Kind: entity.DefenceGem}},
		{cfg.HealthWeight, Outcome{Drop: true, Kind: entity.HealthGem}},
	}

	t := &Table{gems: map[entity.PickupKind]gem{
		entity.ExperienceGem: {amount: cfg.ExperienceAmount},
		entity.SpeedGem:      {boost: cfg.SpeedGem.Boost, duration: cfg.SpeedGem.Duration},
		entity.DamageGem:     {boost: cfg.DamageGem.Boost, duration: cfg.DamageGem.Duration},
		entity.DefenceGem:    {boost: cfg.DefenceGem.Boost, duration: cfg.DefenceGem.Duration},
		entity.HealthGem:     {boost: cfg.HealthGem.Boost, duration: cfg.HealthGem.Duration},
	}}
	lo := 0
	for _, w := range weights {
		if w.w < 0 {
			return nil, fmt.Errorf("loot weight for %q must be >= 0, got %d", w.outcome.Kind, w.w)
		}
		if w.w == 0 {
			continue
		}
		t.bands = append(t.bands, band{lo: lo, hi: lo + w.w, outcome: w.outcome})
		lo += w.w
	}
	if lo < 100 {
		t.bands = append(t.bands, band{lo: lo, hi: 100, outcome: Outcome{Drop: true, Kind: entity.ExperienceGem}})
	}
	return t, nil
}

// Outcome returns the outcome of percentile roll.
//
// Precondition: 0 <= roll < 100.
func (t *Table) Outcome(roll int) Outcome {
	for _, b := range t.bands {
		if roll >= b.lo && roll < b.hi {
			return b.outcome
		}
	}
	return Outcome{Drop: true, Kind: entity.ExperienceGem}
}

// Roll draws a percentile from src and returns the resulting pickup at pos,
// or nil for the no-drop band.
func (t *Table) Roll(src dice.Source, pos entity.Vec) *entity.Pickup {
	o := t.Outcome(dice.Percent(src))
	if !o.Drop {
		return nil
	}
	return t.Pickup(o.Kind, pos)
}

// Pickup creates a pickup of kind at pos carrying the configured payload.
func (t *Table) Pickup(kind entity.PickupKind, pos entity.Vec) *entity.Pickup {
	g := t.gems[kind]
	return entity.NewPickup(kind, pos, g.amount, g.boost, g.duration)
}
