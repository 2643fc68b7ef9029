// Package world owns the simulation state: the player, the monster, bullet
// and pickup collections, the upgrade catalog, the spawner, the tile map and
// the elapsed timer.
package world

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/entity"
	"github.com/cory-johannsen/survivor/internal/game/loot"
	"github.com/cory-johannsen/survivor/internal/game/spawn"
	"github.com/cory-johannsen/survivor/internal/game/upgrade"
)

// ErrNotFound is returned when removing an entity the world does not hold.
var ErrNotFound = errors.New("entity not found")

// Stats are cumulative run totals since the world was created or restored.
type Stats struct {
	MonstersSpawned  uint64
	MonstersKilled   uint64
	PickupsCollected uint64
	BulletsFired     uint64
}

// Contents is a complete replacement state for LoadGameData.
type Contents struct {
	Player   *entity.Player
	Monsters []*entity.Monster
	Bullets  []*entity.Bullet
	Pickups  []*entity.Pickup
	Timer    int
	// Upgrades maps item IDs to catalog levels. Absent items restart at
	// level 1.
	Upgrades map[string]int
}

// GameWorld is the single owner of every entity collection.
//
// Invariant: each collection holds an entity at most once; entities are
// iterated in insertion order.
//
// Concurrency: not safe for concurrent use; the game loop is the only caller.
type GameWorld struct {
	cfg    config.GameConfig
	clock  cooldown.Clock
	roller *dice.Roller
	logger *zap.Logger

	bounds  entity.Rect
	tiles   *TileMap
	spawner *spawn.Spawner
	drops   *loot.Table

	upgrades *upgrade.Catalog

	player   *entity.Player
	monsters []*entity.Monster
	bullets  []*entity.Bullet
	pickups  []*entity.Pickup

	timer     int
	timerGate *cooldown.Handler
	stats     Stats
}

// New creates a world with a fresh player at its centre.
//
// Precondition: cfg must have passed Validate; clock, src and logger must be
// non-nil. A nil presets slice selects spawn.DefaultPresets.
// Postcondition: Returns a world with no monsters, bullets or pickups, or a
// non-nil error when the presets or loot weights are invalid.
func New(cfg config.GameConfig, clock cooldown.Clock, src dice.Source, presets []*spawn.Preset, logger *zap.Logger) (*GameWorld, error) {
	if presets == nil {
		presets = spawn.DefaultPresets()
	}
	factory, err := spawn.NewFactory(presets, clock, cfg.Spawn.LevelUpInterval)
	if err != nil {
		return nil, fmt.Errorf("building monster factory: %w", err)
	}
	drops, err := loot.NewTable(cfg.Loot)
	if err != nil {
		return nil, fmt.Errorf("building loot table: %w", err)
	}

	w := &GameWorld{
		cfg:       cfg,
		clock:     clock,
		roller:    dice.NewLoggedRoller(src, logger),
		logger:    logger,
		bounds:    entity.Rect{W: float64(cfg.World.Width), H: float64(cfg.World.Height)},
		tiles:     NewTileMap(cfg.World),
		drops:     drops,
		upgrades:  upgrade.NewCatalog(),
		timerGate: cooldown.New(clock, time.Second),
	}
	w.spawner = spawn.NewSpawner(factory, clock, cfg.Spawn.Interval, src, cfg.World.Width, cfg.World.Height, logger)
	w.player = w.NewPlayer()
	w.timerGate.PutOnCooldown()
	return w, nil
}

// NewPlayer builds a level 1 player at the world centre from the configured
// player stats. It does not install the player.
func (w *GameWorld) NewPlayer() *entity.Player {
	p := w.cfg.Player
	return entity.NewPlayer(entity.Vec{X: w.bounds.W / 2, Y: w.bounds.H / 2}, entity.PlayerStats{
		Health:               p.Health,
		Speed:                p.Speed,
		Damage:               p.Damage,
		Defence:              p.Defence,
		Autoheal:             p.Autoheal,
		AutohealInterval:     p.AutohealInterval,
		ExperienceMultiplier: p.ExperienceMultiplier,
	}, w.bounds, w.clock, w.logger)
}

// Config returns the game configuration the world was built with.
func (w *GameWorld) Config() config.GameConfig { return w.cfg }

// Logger returns the logger entities built for this world log to.
func (w *GameWorld) Logger() *zap.Logger { return w.logger }

// Player returns the player.
func (w *GameWorld) Player() *entity.Player { return w.player }

// Monsters returns a copy of the monster collection.
func (w *GameWorld) Monsters() []*entity.Monster { return slices.Clone(w.monsters) }

// Bullets returns a copy of the bullet collection.
func (w *GameWorld) Bullets() []*entity.Bullet { return slices.Clone(w.bullets) }

// Pickups returns a copy of the pickup collection.
func (w *GameWorld) Pickups() []*entity.Pickup { return slices.Clone(w.pickups) }

// Timer returns the elapsed simulated seconds.
func (w *GameWorld) Timer() int { return w.timer }

// Bounds returns the world rectangle.
func (w *GameWorld) Bounds() entity.Rect { return w.bounds }

// Clock returns the simulation clock.
func (w *GameWorld) Clock() cooldown.Clock { return w.clock }

// TileMap returns the static tile grid.
func (w *GameWorld) TileMap() *TileMap { return w.tiles }

// Upgrades returns the level-up item catalog.
func (w *GameWorld) Upgrades() *upgrade.Catalog { return w.upgrades }

// Spawner returns the monster spawner.
func (w *GameWorld) Spawner() *spawn.Spawner { return w.spawner }

// Stats returns the run totals.
func (w *GameWorld) Stats() Stats { return w.stats }

// Update advances the world one tick: the player, then every monster, then
// every bullet, then the spawner, then the elapsed-time gate.
//
// Monsters and bullets are iterated over copies so removals requested while
// updating never disturb the iteration.
func (w *GameWorld) Update() {
	w.player.Update(w)

	for _, m := range w.Monsters() {
		m.Update(w)
	}

	for _, b := range w.Bullets() {
		b.Update(w)
		if w.cfg.Combat.CullBullets && b.OutOf(w.bounds) {
			_ = w.RemoveBullet(b)
		}
	}

	w.spawner.Update(w)

	if w.timerGate.TryAct() {
		w.timer++
	}
}

// AddMonster appends m. Adding a monster already present is a no-op.
func (w *GameWorld) AddMonster(m *entity.Monster) {
	if slices.Contains(w.monsters, m) {
		return
	}
	w.monsters = append(w.monsters, m)
	w.stats.MonstersSpawned++
}

// RemoveMonster removes m and rolls the drop table, placing at most one
// pickup at the monster's last position.
//
// Postcondition: Returns ErrNotFound and changes nothing when m is absent.
func (w *GameWorld) RemoveMonster(m *entity.Monster) error {
	var ok bool
	if w.monsters, ok = remove(w.monsters, m); !ok {
		return fmt.Errorf("removing monster %s: %w", m.ID(), ErrNotFound)
	}
	w.stats.MonstersKilled++

	drop := w.drops.Roll(w.roller, m.Position())
	if drop != nil {
		w.AddPickup(drop)
	}
	w.logger.Debug("monster removed",
		zap.String("id", m.ID()),
		zap.String("type", m.Kind()),
		zap.Bool("dropped", drop != nil),
	)
	return nil
}

// AddBullet appends b. Adding a bullet already present is a no-op.
func (w *GameWorld) AddBullet(b *entity.Bullet) {
	if slices.Contains(w.bullets, b) {
		return
	}
	w.bullets = append(w.bullets, b)
	w.stats.BulletsFired++
}

// RemoveBullet removes b.
//
// Postcondition: Returns ErrNotFound and changes nothing when b is absent.
func (w *GameWorld) RemoveBullet(b *entity.Bullet) error {
	var ok bool
	if w.bullets, ok = remove(w.bullets, b); !ok {
		return fmt.Errorf("removing bullet %s: %w", b.ID(), ErrNotFound)
	}
	return nil
}

// AddPickup appends p. Adding a pickup already present is a no-op.
func (w *GameWorld) AddPickup(p *entity.Pickup) {
	if slices.Contains(w.pickups, p) {
		return
	}
	w.pickups = append(w.pickups, p)
}

// RemovePickup removes p.
//
// Postcondition: Returns ErrNotFound and changes nothing when p is absent.
func (w *GameWorld) RemovePickup(p *entity.Pickup) error {
	var ok bool
	if w.pickups, ok = remove(w.pickups, p); !ok {
		return fmt.Errorf("removing pickup %s: %w", p.ID(), ErrNotFound)
	}
	return nil
}

// CollectPickup applies p to the player and removes it in one step, so a
// pickup is never applied twice.
//
// Postcondition: Returns ErrNotFound and applies nothing when p is absent.
func (w *GameWorld) CollectPickup(p *entity.Pickup) error {
	if err := w.RemovePickup(p); err != nil {
		return err
	}
	w.player.PickupGem(p)
	w.stats.PickupsCollected++
	return nil
}

// ClearAllEntities removes every monster, bullet and pickup. The player and
// timer are kept.
func (w *GameWorld) ClearAllEntities() {
	w.monsters = nil
	w.bullets = nil
	w.pickups = nil
}

// LoadGameData replaces the whole world state with c.
//
// Precondition: c.Player must be non-nil, every entity in c fully built and
// c.Upgrades accepted by Upgrades().CheckLevels.
// Postcondition: Run totals restart at zero and the elapsed-time gate restarts.
func (w *GameWorld) LoadGameData(c Contents) {
	if err := w.upgrades.SetLevels(c.Upgrades); err != nil {
		w.logger.Error("upgrade levels not restored", zap.Error(err))
	}
	w.player = c.Player
	w.monsters = slices.Clone(c.Monsters)
	w.bullets = slices.Clone(c.Bullets)
	w.pickups = slices.Clone(c.Pickups)
	w.timer = c.Timer
	w.stats = Stats{}
	w.timerGate.PutOnCooldown()
}

// Reset replaces the world with a fresh player and empty collections.
func (w *GameWorld) Reset() {
	w.LoadGameData(Contents{Player: w.NewPlayer()})
}

// remove deletes the first occurrence of e from s, preserving order.
func remove[T comparable](s []T, e T) ([]T, bool) {
	i := slices.Index(s, e)
	if i < 0 {
		return s, false
	}
	return slices.Delete(s, i, i+1), true
}
