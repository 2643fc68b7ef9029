// Package gameserver drives the simulation at a fixed tick rate.
package gameserver

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/collision"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/world"
	"github.com/cory-johannsen/survivor/internal/observability"
)

// ErrGameOver is returned by Step and Run once the player has died.
var ErrGameOver = errors.New("game over")

// upgradeChoices is the number of items offered per level-up.
const upgradeChoices = 3

// Pauser is a clock that can be frozen.
type Pauser interface {
	Pause()
	Resume()
}

// Option configures a Loop.
type Option func(*Loop)

// WithMetrics records a sample after every tick.
func WithMetrics(m *observability.SimMetrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// WithPauser freezes p while the loop is paused.
func WithPauser(p Pauser) Option {
	return func(l *Loop) { l.pauser = p }
}

// Loop advances one GameWorld at a fixed interval.
//
// Invariant: Step is only ever called from one goroutine at a time; Pause,
// Resume, Paused and Ticks may be called from any goroutine.
type Loop struct {
	world      *world.GameWorld
	collisions *collision.Handler
	src        dice.Source
	interval   time.Duration
	logger     *zap.Logger

	metrics *observability.SimMetrics
	pauser  Pauser

	paused atomic.Bool
	ticks  atomic.Uint64
}

// NewLoop returns a loop that ticks w every interval. Level-up choices are
// drawn from src and applied from w's upgrade catalog.
//
// Precondition: interval must be > 0; every other argument must be non-nil.
func NewLoop(w *world.GameWorld, collisions *collision.Handler, src dice.Source, interval time.Duration, logger *zap.Logger, opts ...Option) *Loop {
	if interval <= 0 {
		panic("gameserver.NewLoop: interval must be > 0")
	}
	l := &Loop{
		world:      w,
		collisions: collisions,
		src:        src,
		interval:   interval,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// World returns the simulated world.
func (l *Loop) World() *world.GameWorld { return l.world }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Paused reports whether Run is skipping ticks.
func (l *Loop) Paused() bool { return l.paused.Load() }

// Pause stops Run from ticking and freezes the pauser clock.
func (l *Loop) Pause() {
	if l.paused.Swap(true) {
		return
	}
	if l.pauser != nil {
		l.pauser.Pause()
	}
	l.logger.Info("simulation paused", zap.Uint64("tick", l.Ticks()))
}

// Resume undoes Pause.
func (l *Loop) Resume() {
	if !l.paused.Swap(false) {
		return
	}
	if l.pauser != nil {
		l.pauser.Resume()
	}
	l.logger.Info("simulation resumed", zap.Uint64("tick", l.Ticks()))
}

// Step runs exactly one tick: world update, collisions, pending upgrades,
// then metrics.
//
// Postcondition: Returns ErrGameOver, without ticking, once the player is dead,
// and returns ErrGameOver from the tick in which the player dies.
func (l *Loop) Step() error {
	player := l.world.Player()
	if player.IsDead() {
		return ErrGameOver
	}
	start := time.Now()

	l.world.Update()
	res := l.collisions.HandleCollisions(l.world)
	l.resolveUpgrades()
	tick := l.ticks.Add(1)

	if l.metrics != nil {
		stats := l.world.Stats()
		l.metrics.Observe(observability.Sample{
			TickDuration:     time.Since(start),
			Monsters:         len(l.world.Monsters()),
			Bullets:          len(l.world.Bullets()),
			Pickups:          len(l.world.Pickups()),
			PlayerLevel:      player.Level(),
			PlayerHealth:     player.Health(),
			MonstersSpawned:  stats.MonstersSpawned,
			MonstersKilled:   stats.MonstersKilled,
			PickupsCollected: stats.PickupsCollected,
		})
	}

	if res.MonstersKilled > 0 || res.ContactHits > 0 {
		l.logger.Debug("tick",
			zap.Uint64("tick", tick),
			zap.Int("killed", res.MonstersKilled),
			zap.Int("contact_hits", res.ContactHits),
			zap.Int("player_health", player.Health()),
		)
	}

	if player.IsDead() {
		l.logger.Info("game over",
			zap.Uint64("tick", tick),
			zap.Int("timer", l.world.Timer()),
			zap.Int("level", player.Level()),
			zap.Uint64("monsters_killed", l.world.Stats().MonstersKilled),
		)
		return ErrGameOver
	}
	return nil
}

// resolveUpgrades picks the first offered item for every pending level-up.
func (l *Loop) resolveUpgrades() {
	player := l.world.Player()
	catalog := l.world.Upgrades()
	for player.ConsumePendingUpgrade() {
		offer := catalog.Offer(l.src, upgradeChoices)
		if len(offer) == 0 {
			continue
		}
		chosen := offer[0]
		if err := catalog.Choose(chosen.ID, player); err != nil {
			l.logger.Warn("applying upgrade", zap.String("item", chosen.ID), zap.Error(err))
			continue
		}
		l.logger.Info("upgrade chosen",
			zap.String("item", chosen.ID),
			zap.Int("item_level", chosen.Level()),
			zap.Int("player_level", player.Level()),
		)
	}
}

// Run ticks until ctx is cancelled or the player dies.
//
// Postcondition: Returns nil on cancellation and ErrGameOver on death.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("simulation started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("simulation stopped", zap.Uint64("ticks", l.Ticks()))
			return nil
		case <-ticker.C:
			if l.paused.Load() {
				continue
			}
			if err := l.Step(); err != nil {
				return err
			}
		}
	}
}
