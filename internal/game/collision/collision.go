// Package collision resolves overlaps between entities once per tick.
package collision

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/world"
)

// Result counts what one collision pass resolved.
type Result struct {
	BulletHits       int
	MonstersKilled   int
	ContactHits      int
	PickupsCollected int
}

// Handler resolves bullet/monster, monster/player and pickup/player overlaps.
type Handler struct {
	contactDamage bool
	logger        *zap.Logger
}

// NewHandler creates a Handler. contactDamage enables damage to the player
// on every tick a monster overlaps it, in addition to ranged monster attacks.
//
// Precondition: logger must be non-nil.
func NewHandler(contactDamage bool, logger *zap.Logger) *Handler {
	return &Handler{contactDamage: contactDamage, logger: logger}
}

// HandleCollisions runs one collision pass over w in insertion order:
// bullets against monsters, then monsters against the player, then pickups
// against the player.
//
// Postcondition: each bullet hits at most one monster; a monster reduced to
// 0 health and every collected pickup are removed within the pass.
func (h *Handler) HandleCollisions(w *world.GameWorld) Result {
	var res Result
	h.handleBullets(w, &res)
	h.handleMonsters(w, &res)
	h.handlePickups(w, &res)
	return res
}

func (h *Handler) handleBullets(w *world.GameWorld, res *Result) {
	monsters := w.Monsters()
	for _, b := range w.Bullets() {
		for _, m := range monsters {
			if m.IsDead() || !b.Bounds().Overlaps(m.Bounds()) {
				continue
			}
			m.TakeDamage(b.DamageAmount())
			b.TakeDamage(b.Health())
			res.BulletHits++
			if err := w.RemoveBullet(b); err != nil {
				h.logger.Warn("bullet already removed", zap.String("id", b.ID()), zap.Error(err))
			}
			if m.IsDead() {
				if err := w.RemoveMonster(m); err != nil {
					h.logger.Warn("monster already removed", zap.String("id", m.ID()), zap.Error(err))
				} else {
					res.MonstersKilled++
				}
			}
			break
		}
	}
}

func (h *Handler) handleMonsters(w *world.GameWorld, res *Result) {
	if !h.contactDamage {
		return
	}
	player := w.Player()
	for _, m := range w.Monsters() {
		if player.Bounds().Overlaps(m.Bounds()) {
			player.TakeDamage(m.DamageAmount())
			res.ContactHits++
		}
	}
}

func (h *Handler) handlePickups(w *world.GameWorld, res *Result) {
	player := w.Player()
	for _, p := range w.Pickups() {
		if !player.Bounds().Overlaps(p.Bounds()) {
			continue
		}
		if err := w.CollectPickup(p); err != nil {
			h.logger.Warn("pickup already collected", zap.String("id", p.ID()), zap.Error(err))
			continue
		}
		res.PickupsCollected++
	}
}
