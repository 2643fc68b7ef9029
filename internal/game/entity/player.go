package entity

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
)

// MaxLevel is the highest level a player can reach. The experience
// threshold of the last level still fits in an int.
const MaxLevel = 62

// PlayerStats are the starting attributes of a new player.
type PlayerStats struct {
	Health               int
	Speed                float64
	Damage               int
	Defence              int
	Autoheal             int
	AutohealInterval     time.Duration
	ExperienceMultiplier float64
}

// Player is the entity controlled by the simulation's auto-combat.
//
// Invariant: 0 <= Health() <= MaxHealth(); 1 <= Level() <= MaxLevel.
type Player struct {
	Body

	logger *zap.Logger
	clock  cooldown.Clock
	bounds Rect

	health        int
	baseMaxHealth int
	maxHealthInc  int
	maxHealth     int

	experience     int
	level          int
	experienceMult float64

	speed   Stat[float64]
	damage  Stat[int]
	defence Stat[int]

	autoheal     int
	autohealGate *cooldown.Handler

	weapons []Weapon
	weapon  int

	pendingUpgrades int
}

// NewPlayer creates a level 1 player at pos with full health and the pistol equipped.
//
// Precondition: stats.Health > 0; clock and logger must be non-nil.
// Postcondition: Returns a player confined to bounds.
func NewPlayer(pos Vec, stats PlayerStats, bounds Rect, clock cooldown.Clock, logger *zap.Logger) *Player {
	p := &Player{
		Body:           newBody("", bounds.Clamp(pos), PlayerSize),
		logger:         logger,
		clock:          clock,
		bounds:         bounds,
		health:         stats.Health,
		baseMaxHealth:  stats.Health,
		maxHealth:      stats.Health,
		level:          1,
		experienceMult: stats.ExperienceMultiplier,
		speed:          newStat(stats.Speed, clock),
		damage:         newStat(stats.Damage, clock),
		defence:        newStat(stats.Defence, clock),
		autoheal:       stats.Autoheal,
		autohealGate:   cooldown.New(clock, stats.AutohealInterval),
	}
	for _, spec := range DefaultWeaponSpecs() {
		p.weapons = append(p.weapons, NewWeapon(spec, clock))
	}
	p.logger.Debug("created player", zap.Stringer("player", p))
	return p
}

// PlayerState is the persisted form of a Player. Stat values are permanent
// values; active boosts are not persisted.
type PlayerState struct {
	Health               int
	MaxHealth            int
	Experience           int
	Level                int
	Speed                float64
	Damage               int
	Defence              int
	Autoheal             int
	ExperienceMultiplier float64
	Weapon               WeaponKind
	Position             Vec
	PendingUpgrades      int
}

// State returns the persisted form of p.
func (p *Player) State() PlayerState {
	return PlayerState{
		Health:               p.health,
		MaxHealth:            p.maxHealth,
		Experience:           p.experience,
		Level:                p.level,
		Speed:                p.speed.Permanent(),
		Damage:               p.damage.Permanent(),
		Defence:              p.defence.Permanent(),
		Autoheal:             p.autoheal,
		ExperienceMultiplier: p.experienceMult,
		Weapon:               p.Weapon().Kind(),
		Position:             p.pos,
		PendingUpgrades:      p.pendingUpgrades,
	}
}

// RestorePlayer rebuilds a player from its persisted state.
//
// Precondition: clock and logger must be non-nil.
// Postcondition: Returns a non-nil error when s violates a player invariant
// or names an unknown weapon.
func RestorePlayer(s PlayerState, autohealInterval time.Duration, bounds Rect, clock cooldown.Clock, logger *zap.Logger) (*Player, error) {
	if s.Level < 1 || s.Level > MaxLevel {
		return nil, fmt.Errorf("level must be in [1, %d], got %d", MaxLevel, s.Level)
	}
	if s.MaxHealth <= 0 {
		return nil, fmt.Errorf("max_health must be > 0, got %d", s.MaxHealth)
	}
	if s.Health < 0 || s.Health > s.MaxHealth {
		return nil, fmt.Errorf("health %d outside [0, %d]", s.Health, s.MaxHealth)
	}
	if s.Experience < 0 || s.Experience > experienceFor(MaxLevel) {
		return nil, fmt.Errorf("experience must be in [0, %d], got %d", experienceFor(MaxLevel), s.Experience)
	}
	if s.PendingUpgrades < 0 {
		return nil, fmt.Errorf("pending_upgrades must be >= 0, got %d", s.PendingUpgrades)
	}

	p := NewPlayer(s.Position, PlayerStats{
		Health:               s.MaxHealth,
		Speed:                s.Speed,
		Damage:               s.Damage,
		Defence:              s.Defence,
		Autoheal:             s.Autoheal,
		AutohealInterval:     autohealInterval,
		ExperienceMultiplier: s.ExperienceMultiplier,
	}, bounds, clock, logger)

	idx := p.weaponIndex(s.Weapon)
	if idx < 0 {
		return nil, fmt.Errorf("unknown weapon %q", s.Weapon)
	}
	p.weapon = idx
	p.level = s.Level
	p.experience = s.Experience
	p.health = s.Health
	p.maxHealth = s.MaxHealth
	p.baseMaxHealth = max(1, s.MaxHealth/s.Level)
	p.pendingUpgrades = s.PendingUpgrades
	return p, nil
}

func (p *Player) weaponIndex(kind WeaponKind) int {
	for i, w := range p.weapons {
		if w.Kind() == kind {
			return i
		}
	}
	return -1
}

// Health returns the current health.
func (p *Player) Health() int { return p.health }

// MaxHealth returns the current maximum health.
func (p *Player) MaxHealth() int { return p.maxHealth }

// Experience returns the experience accumulated toward the next level.
func (p *Player) Experience() int { return p.experience }

// Level returns the current level.
func (p *Player) Level() int { return p.level }

// ExperienceMultiplier returns the factor applied to experience gains.
func (p *Player) ExperienceMultiplier() float64 { return p.experienceMult }

// ExperienceToNextLevel returns 2 * 2^(level-1).
func (p *Player) ExperienceToNextLevel() int { return experienceFor(p.level) }

func experienceFor(level int) int { return 2 << (min(level, MaxLevel) - 1) }

// Speed returns the current movement speed, boosts included.
func (p *Player) Speed() float64 { return p.speed.Value() }

// Damage returns the current damage stat, boosts included.
func (p *Player) Damage() int { return p.damage.Value() }

// DamageAmount implements DamageDealer.
func (p *Player) DamageAmount() int { return p.damage.Value() }

// Defence returns the current defence, boosts included.
func (p *Player) Defence() int { return p.defence.Value() }

// Autoheal returns the health restored per autoheal interval.
func (p *Player) Autoheal() int { return p.autoheal }

// Weapon returns the equipped weapon.
func (p *Player) Weapon() Weapon { return p.weapons[p.weapon] }

// IsDead reports whether the player's health has reached 0.
func (p *Player) IsDead() bool { return p.health <= 0 }

// Move displaces the player by (dx, dy) scaled by the current speed,
// clamped to the world bounds.
func (p *Player) Move(dx, dy float64) {
	p.pos = p.bounds.Clamp(p.pos.Add(Vec{dx, dy}.Scale(p.Speed())))
}

// TakeDamage reduces health by max(0, amount - defence), floored at 0.
func (p *Player) TakeDamage(amount int) {
	p.health = max(0, p.health-max(0, amount-p.Defence()))
}

// Heal restores up to amount health without exceeding max health.
func (p *Player) Heal(amount int) {
	if amount <= 0 {
		return
	}
	p.health = min(p.maxHealth, p.health+amount)
}

// PickupGem applies the pickup's effect to the player.
func (p *Player) PickupGem(gem *Pickup) {
	gem.ApplyTo(p)
}

// GainExperience adds amount scaled by the experience multiplier and
// processes every level-up the new total allows. At MaxLevel experience
// stops accumulating past the last threshold.
func (p *Player) GainExperience(amount int) {
	gained := int(min(float64(amount)*p.experienceMult, math.MaxInt32))
	if gained <= 0 {
		return
	}
	p.experience += gained
	for p.level < MaxLevel && p.experience >= p.ExperienceToNextLevel() {
		p.experience -= p.ExperienceToNextLevel()
		p.level++
		p.levelUpPerks()
	}
	if p.level == MaxLevel {
		p.experience = min(p.experience, p.ExperienceToNextLevel())
	}
}

func (p *Player) levelUpPerks() {
	p.resizeMaxHealth()
	p.pendingUpgrades++

	for i, w := range p.weapons {
		if w.RequiredLevel() == p.level && i != p.weapon {
			p.weapon = i
			p.logger.Debug("weapon unlocked", zap.String("weapon", string(w.Kind())), zap.Int("level", p.level))
		}
	}
	p.logger.Debug("player leveled up", zap.Int("level", p.level), zap.Int("max_health", p.maxHealth))
}

// resizeMaxHealth recomputes max health from the per-level base and raises
// health by the same delta.
func (p *Player) resizeMaxHealth() {
	next := (p.baseMaxHealth + p.maxHealthInc) * p.level
	delta := next - p.maxHealth
	p.maxHealth = next
	p.health = max(0, min(p.maxHealth, p.health+delta))
}

// ChangeWeapon cycles the equipped weapon by direction (+1 or -1) through
// the ordered weapon list. It returns false and keeps the current weapon
// when the target requires a higher level.
func (p *Player) ChangeWeapon(direction int) bool {
	n := len(p.weapons)
	target := ((p.weapon+direction)%n + n) % n
	if p.weapons[target].RequiredLevel() > p.level {
		return false
	}
	p.weapon = target
	return true
}

// PendingUpgrades returns the number of unresolved level-up choices.
func (p *Player) PendingUpgrades() int { return p.pendingUpgrades }

// ConsumePendingUpgrade resolves one pending level-up choice and reports
// whether there was one.
func (p *Player) ConsumePendingUpgrade() bool {
	if p.pendingUpgrades == 0 {
		return false
	}
	p.pendingUpgrades--
	return true
}

// AddMaxHealth permanently raises the per-level max health base by n.
func (p *Player) AddMaxHealth(n int) {
	p.maxHealthInc += n
	p.resizeMaxHealth()
}

// AddSpeed permanently raises speed by f.
func (p *Player) AddSpeed(f float64) { p.speed.Increment += f }

// AddDamage permanently raises damage by n.
func (p *Player) AddDamage(n int) { p.damage.Increment += n }

// AddDefence permanently raises defence by n.
func (p *Player) AddDefence(n int) { p.defence.Increment += n }

// AddExperienceMultiplier raises the experience multiplier by f.
func (p *Player) AddExperienceMultiplier(f float64) { p.experienceMult += f }

// AddAutoheal raises the autoheal amount by n.
func (p *Player) AddAutoheal(n int) { p.autoheal += n }

// BoostSpeed applies a temporary speed boost. See Stat.Boost.
func (p *Player) BoostSpeed(amount float64, d time.Duration) bool { return p.speed.Boost(amount, d) }

// BoostDamage applies a temporary damage boost. See Stat.Boost.
func (p *Player) BoostDamage(amount int, d time.Duration) bool { return p.damage.Boost(amount, d) }

// BoostDefence applies a temporary defence boost. See Stat.Boost.
func (p *Player) BoostDefence(amount int, d time.Duration) bool { return p.defence.Boost(amount, d) }

// Update heals on the autoheal interval, then fires the equipped weapon at
// the nearest monster.
func (p *Player) Update(w World) {
	if p.autoheal > 0 && p.health < p.maxHealth && p.autohealGate.TryAct() {
		p.Heal(p.autoheal)
	}
	target, ok := NearestMonster(w.Monsters(), p.pos)
	if !ok {
		return
	}
	p.Weapon().Shoot(w, p.pos, target.Position())
}

// NearestMonster returns the monster closest to pos by squared distance.
// Ties keep the earliest monster in the slice.
func NearestMonster(monsters []*Monster, pos Vec) (*Monster, bool) {
	var (
		best   *Monster
		bestSq float64
	)
	for _, m := range monsters {
		d := m.Position().DistSq(pos)
		if best == nil || d < bestSq {
			best, bestSq = m, d
		}
	}
	return best, best != nil
}

func (p *Player) String() string {
	return fmt.Sprintf("Player(hp=%d/%d, xp=%d, lvl=%d, pos=(%.1f, %.1f))",
		p.health, p.maxHealth, p.experience, p.level, p.pos.X, p.pos.Y)
}
