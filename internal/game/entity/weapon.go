package entity

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
)

// WeaponKind names a weapon tier.
type WeaponKind string

const (
	Pistol  WeaponKind = "pistol"
	Shotgun WeaponKind = "shotgun"
	Minigun WeaponKind = "minigun"
)

// WeaponSpec holds the immutable base stats of a weapon.
type WeaponSpec struct {
	Kind          WeaponKind
	BulletSpeed   float64
	BulletDamage  int
	ShootCooldown time.Duration
	// RequiredLevel is the player level at which the weapon unlocks.
	RequiredLevel int
	// Spread lists the angular offsets, in radians, of the bullets fired by
	// one shot. Empty means a single bullet straight at the target.
	Spread []float64
}

// DefaultWeaponSpecs returns the ordered weapon list the player cycles through.
func DefaultWeaponSpecs() []WeaponSpec {
	return []WeaponSpec{
		{Kind: Pistol, BulletSpeed: 5.0, BulletDamage: 10, ShootCooldown: 500 * time.Millisecond, RequiredLevel: 1},
		{
			Kind: Shotgun, BulletSpeed: 4.0, BulletDamage: 10, ShootCooldown: 600 * time.Millisecond, RequiredLevel: 4,
			Spread: []float64{-0.1, -0.05, 0, 0.05, 0.1},
		},
		{Kind: Minigun, BulletSpeed: 6.0, BulletDamage: 8, ShootCooldown: 100 * time.Millisecond, RequiredLevel: 8},
	}
}

// Weapon fires bullets into the world behind its own cooldown gate.
type Weapon interface {
	Kind() WeaponKind
	Spec() WeaponSpec
	RequiredLevel() int
	// Shoot fires at target from src when the weapon's cooldown is ready and
	// returns the number of bullets added to w.
	Shoot(w World, src, target Vec) int
}

// NewWeapon builds the Weapon described by spec.
//
// Precondition: clock must be non-nil; spec.RequiredLevel >= 1.
func NewWeapon(spec WeaponSpec, clock cooldown.Clock) Weapon {
	gate := cooldown.New(clock, spec.ShootCooldown)
	if len(spec.Spread) > 0 {
		return &spreadShot{spec: spec, gate: gate}
	}
	return &singleShot{spec: spec, gate: gate}
}

// bulletDamage scales the weapon's bullet damage by the firing player's damage stat.
func bulletDamage(spec WeaponSpec, w World) int {
	if p := w.Player(); p != nil {
		return spec.BulletDamage * p.Damage()
	}
	return spec.BulletDamage
}

// singleShot fires one bullet directly at the target.
type singleShot struct {
	spec WeaponSpec
	gate *cooldown.Handler
}

func (s *singleShot) Kind() WeaponKind   { return s.spec.Kind }
func (s *singleShot) Spec() WeaponSpec   { return s.spec }
func (s *singleShot) RequiredLevel() int { return s.spec.RequiredLevel }

func (s *singleShot) Shoot(w World, src, target Vec) int {
	if !s.gate.TryAct() {
		return 0
	}
	w.AddBullet(NewBullet(s.spec.Kind, src, target, s.spec.BulletSpeed, bulletDamage(s.spec, w)))
	return 1
}

func (s *singleShot) String() string {
	return fmt.Sprintf("Weapon(%s)", s.spec.Kind)
}

// spreadShot fires one bullet per spread offset, all in a single action
// sharing one cooldown gate and one origin.
type spreadShot struct {
	spec WeaponSpec
	gate *cooldown.Handler
}

func (s *spreadShot) Kind() WeaponKind   { return s.spec.Kind }
func (s *spreadShot) Spec() WeaponSpec   { return s.spec }
func (s *spreadShot) RequiredLevel() int { return s.spec.RequiredLevel }

func (s *spreadShot) Shoot(w World, src, target Vec) int {
	if !s.gate.TryAct() {
		return 0
	}
	aim := target.Sub(src).Normalize()
	damage := bulletDamage(s.spec, w)
	for _, offset := range s.spec.Spread {
		dir := aim.Rotate(offset)
		w.AddBullet(NewBullet(s.spec.Kind, src, src.Add(dir.Scale(s.spec.BulletSpeed)), s.spec.BulletSpeed, damage))
	}
	return len(s.spec.Spread)
}

func (s *spreadShot) String() string {
	return fmt.Sprintf("Weapon(%s x%d)", s.spec.Kind, len(s.spec.Spread))
}
