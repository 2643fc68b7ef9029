package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
)

// MonsterAttackCooldown is the minimum time between two attacks of one monster.
const MonsterAttackCooldown = 1000 * time.Millisecond

// MaxStat bounds every integer monster attribute, including the level
// multiplier. Level-ups saturate at this value.
const MaxStat = math.MaxInt32

// MonsterStats are the base attributes of a monster type.
type MonsterStats struct {
	Health      int
	Damage      int
	AttackRange float64
	Speed       float64
}

// Monster chases the player and attacks within range. It grows stronger as
// the session's elapsed time increases.
//
// Invariant: 0 <= Health() <= MaxHealth() <= MaxStat;
// 1 <= LevelMultiplier() <= MaxStat.
type Monster struct {
	Body
	kind        string
	health      int
	maxHealth   int
	damage      int
	attackRange float64
	speed       float64
	multiplier  int

	attackGate  *cooldown.Handler
	levelUpGate *cooldown.Handler
}

// NewMonster creates a monster of the given type at pos.
//
// Precondition: stats.Health > 0; clock must be non-nil.
// Postcondition: The level-up cooldown is started immediately, so the first
// level-up check passes only after levelUpInterval.
func NewMonster(kind string, pos Vec, stats MonsterStats, clock cooldown.Clock, levelUpInterval time.Duration) *Monster {
	m := &Monster{
		Body:        newBody("", pos, MonsterSize),
		kind:        kind,
		health:      stats.Health,
		maxHealth:   stats.Health,
		damage:      stats.Damage,
		attackRange: stats.AttackRange,
		speed:       stats.Speed,
		multiplier:  1,
		attackGate:  cooldown.New(clock, MonsterAttackCooldown),
		levelUpGate: cooldown.New(clock, levelUpInterval),
	}
	m.levelUpGate.PutOnCooldown()
	return m
}

// MonsterState is the persisted form of a Monster.
type MonsterState struct {
	ID              string
	Kind            string
	Position        Vec
	Health          int
	MaxHealth       int
	Damage          int
	AttackRange     float64
	Speed           float64
	LevelMultiplier int
}

// State returns the persisted form of m.
func (m *Monster) State() MonsterState {
	return MonsterState{
		ID:              m.id,
		Kind:            m.kind,
		Position:        m.pos,
		Health:          m.health,
		MaxHealth:       m.maxHealth,
		Damage:          m.damage,
		AttackRange:     m.attackRange,
		Speed:           m.speed,
		LevelMultiplier: m.multiplier,
	}
}

// RestoreMonster rebuilds a monster from its persisted state.
//
// Postcondition: Returns a non-nil error when s violates a monster invariant.
func RestoreMonster(s MonsterState, clock cooldown.Clock, levelUpInterval time.Duration) (*Monster, error) {
	if s.MaxHealth <= 0 {
		return nil, fmt.Errorf("max_health must be > 0, got %d", s.MaxHealth)
	}
	if s.Health < 0 || s.Health > s.MaxHealth {
		return nil, fmt.Errorf("health %d outside [0, %d]", s.Health, s.MaxHealth)
	}
	if s.MaxHealth > MaxStat || s.Damage > MaxStat {
		return nil, fmt.Errorf("max_health %d or damage %d exceeds %d", s.MaxHealth, s.Damage, MaxStat)
	}
	if s.LevelMultiplier < 1 || s.LevelMultiplier > MaxStat {
		return nil, fmt.Errorf("level_multiplier must be in [1, %d], got %d", MaxStat, s.LevelMultiplier)
	}
	m := NewMonster(s.Kind, s.Position, MonsterStats{
		Health:      s.MaxHealth,
		Damage:      s.Damage,
		AttackRange: s.AttackRange,
		Speed:       s.Speed,
	}, clock, levelUpInterval)
	if s.ID != "" {
		m.id = s.ID
	}
	m.health = s.Health
	m.multiplier = s.LevelMultiplier
	return m, nil
}

// Kind returns the monster type tag.
func (m *Monster) Kind() string { return m.kind }

// Health returns the current health.
func (m *Monster) Health() int { return m.health }

// MaxHealth returns the current maximum health.
func (m *Monster) MaxHealth() int { return m.maxHealth }

// DamageAmount returns the damage of one attack.
func (m *Monster) DamageAmount() int { return m.damage }

// AttackRange returns the distance below which the monster can attack.
func (m *Monster) AttackRange() float64 { return m.attackRange }

// Speed returns the distance moved per step.
func (m *Monster) Speed() float64 { return m.speed }

// LevelMultiplier returns the multiplier applied at the last level-up.
func (m *Monster) LevelMultiplier() int { return m.multiplier }

// IsDead reports whether the monster's health has reached 0.
func (m *Monster) IsDead() bool { return m.health <= 0 }

// Move displaces the monster by (dx, dy) scaled by its speed.
func (m *Monster) Move(dx, dy float64) { m.translate(Vec{dx, dy}.Scale(m.speed)) }

// TakeDamage reduces health by amount, floored at 0.
func (m *Monster) TakeDamage(amount int) {
	m.health = max(0, m.health-max(0, amount))
}

// Attack damages target when it is within range and the attack cooldown is
// ready, and reports whether it did.
func (m *Monster) Attack(target *Player) bool {
	if !m.attackGate.IsActionReady() {
		return false
	}
	if math.Sqrt(m.pos.DistSq(target.Position())) >= m.attackRange {
		return false
	}
	target.TakeDamage(m.damage)
	m.attackGate.PutOnCooldown()
	return true
}

// Update removes a dead monster from w; otherwise it steps toward the
// player one unit per axis, attacks and checks for a level-up.
func (m *Monster) Update(w World) {
	if m.IsDead() {
		_ = w.RemoveMonster(m)
		return
	}
	player := w.Player()
	if player == nil {
		return
	}
	dir := player.Position().Sub(m.pos).Sign()
	if dir != (Vec{}) {
		m.Move(dir.X, dir.Y)
	}
	m.Attack(player)
	m.LevelUp(w)
}

// LevelUp raises the level multiplier by Timer()/10 when the level-up
// cooldown is ready; when the multiplier changes, health, max health and
// damage are multiplied by the new multiplier. Every product saturates at
// MaxStat.
func (m *Monster) LevelUp(w World) {
	if !m.levelUpGate.TryAct() {
		return
	}
	next := m.multiplier + min(max(0, w.Timer()/10), MaxStat-m.multiplier)
	if next == m.multiplier {
		return
	}
	m.multiplier = next
	m.health = mulSat(m.health, next)
	m.maxHealth = mulSat(m.maxHealth, next)
	m.damage = mulSat(m.damage, next)
}

// mulSat returns a*b clamped to [0, MaxStat]. Both operands are
// non-negative and at most MaxStat, so the product fits in int64.
func mulSat(a, b int) int {
	p := int64(a) * int64(b)
	if p > MaxStat {
		return MaxStat
	}
	return int(max(p, 0))
}

func (m *Monster) String() string {
	return fmt.Sprintf("Monster(%s, hp=%d/%d, pos=(%.1f, %.1f))", m.kind, m.health, m.maxHealth, m.pos.X, m.pos.Y)
}
