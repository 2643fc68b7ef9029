package entity

import "fmt"

// Bullet is a single-use projectile travelling in a fixed direction.
type Bullet struct {
	Body
	kind   WeaponKind
	dir    Vec
	speed  float64
	damage int
	health int
}

// NewBullet creates a bullet at src aimed at target.
//
// Postcondition: Direction() is the unit vector from src to target, or the
// zero vector when src == target; Health() == 1.
func NewBullet(kind WeaponKind, src, target Vec, speed float64, damage int) *Bullet {
	return &Bullet{
		Body:   newBody("", src, BulletSize),
		kind:   kind,
		dir:    target.Sub(src).Normalize(),
		speed:  speed,
		damage: damage,
		health: 1,
	}
}

// BulletState is the persisted form of a Bullet.
type BulletState struct {
	ID        string
	Kind      WeaponKind
	Position  Vec
	Direction Vec
	Speed     float64
	Damage    int
	Health    int
}

// RestoreBullet rebuilds a bullet from its persisted state.
func RestoreBullet(s BulletState) *Bullet {
	return &Bullet{
		Body:   newBody(s.ID, s.Position, BulletSize),
		kind:   s.Kind,
		dir:    s.Direction,
		speed:  s.Speed,
		damage: s.Damage,
		health: s.Health,
	}
}

// State returns the persisted form of b.
func (b *Bullet) State() BulletState {
	return BulletState{
		ID:        b.id,
		Kind:      b.kind,
		Position:  b.pos,
		Direction: b.dir,
		Speed:     b.speed,
		Damage:    b.damage,
		Health:    b.health,
	}
}

// Kind returns the weapon that fired the bullet.
func (b *Bullet) Kind() WeaponKind { return b.kind }

// Direction returns the bullet's unit direction.
func (b *Bullet) Direction() Vec { return b.dir }

// Speed returns the distance travelled per tick.
func (b *Bullet) Speed() float64 { return b.speed }

// Move displaces the bullet by (dx, dy) scaled by its speed.
func (b *Bullet) Move(dx, dy float64) { b.translate(Vec{dx, dy}.Scale(b.speed)) }

// DamageAmount returns the damage dealt on impact.
func (b *Bullet) DamageAmount() int { return b.damage }

// Health returns the bullet's remaining hit points.
func (b *Bullet) Health() int { return b.health }

// TakeDamage reduces the bullet's hit points, floored at 0.
func (b *Bullet) TakeDamage(amount int) {
	b.health = max(0, b.health-amount)
}

// Spent reports whether the bullet has used up its hit points.
func (b *Bullet) Spent() bool { return b.health <= 0 }

// Update advances the bullet one step along its direction.
func (b *Bullet) Update(World) {
	b.Move(b.dir.X, b.dir.Y)
}

// OutOf reports whether the bullet's centre lies outside bounds.
func (b *Bullet) OutOf(bounds Rect) bool {
	return !bounds.Contains(b.pos)
}

func (b *Bullet) String() string {
	return fmt.Sprintf("Bullet(pos=(%.1f, %.1f), dir=(%.2f, %.2f))", b.pos.X, b.pos.Y, b.dir.X, b.dir.Y)
}
