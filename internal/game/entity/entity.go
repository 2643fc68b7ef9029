// Package entity defines the simulation's entities (player, monsters,
// bullets, pickups, weapons) and the capability interfaces they implement.
//
// Entities never mutate a world collection directly: structural changes are
// requested through the World interface.
package entity

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
)

// Collision box edge lengths, in world units.
const (
	PlayerSize  = 48.0
	MonsterSize = 48.0
	BulletSize  = 10.0
	PickupSize  = 24.0
)

// Positioned is implemented by everything that occupies the world.
type Positioned interface {
	ID() string
	Position() Vec
	// Bounds is the collision box used for overlap tests and renderer culling.
	Bounds() Rect
}

// Movable is a Positioned entity with a movement speed.
type Movable interface {
	Positioned
	Speed() float64
	// Move displaces the entity by (dx, dy) scaled by its speed.
	Move(dx, dy float64)
}

// Damageable is implemented by entities with health.
type Damageable interface {
	Health() int
	TakeDamage(amount int)
}

// DamageDealer is implemented by entities that inflict damage on contact.
type DamageDealer interface {
	DamageAmount() int
}

// Updatable is implemented by entities advanced once per tick.
type Updatable interface {
	Update(w World)
}

// World is the view of the game world an entity may consult during Update.
//
// Implementations must tolerate AddBullet and RemoveMonster being called
// while the world is iterating its own collections.
type World interface {
	Player() *Player
	Monsters() []*Monster
	// Timer returns the elapsed simulated seconds.
	Timer() int
	Bounds() Rect
	Clock() cooldown.Clock
	AddBullet(b *Bullet)
	RemoveMonster(m *Monster) error
}

// Body holds the identity and placement shared by every entity.
type Body struct {
	id   string
	pos  Vec
	size float64
}

func newBody(id string, pos Vec, size float64) Body {
	if id == "" {
		id = uuid.NewString()
	}
	return Body{id: id, pos: pos, size: size}
}

// ID returns the entity's unique identifier.
func (b *Body) ID() string { return b.id }

// Position returns the centre of the entity.
func (b *Body) Position() Vec { return b.pos }

// Bounds returns the collision box centred on the entity.
func (b *Body) Bounds() Rect { return BoxAt(b.pos, b.size) }

func (b *Body) translate(d Vec) { b.pos = b.pos.Add(d) }
