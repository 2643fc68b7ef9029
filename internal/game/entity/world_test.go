package entity_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var bounds = entity.Rect{W: 3200, H: 3200}

func defaultStats() entity.PlayerStats {
	return entity.PlayerStats{
		Health:               100,
		Speed:                5,
		Damage:               1,
		Autoheal:             1,
		AutohealInterval:     time.Second,
		ExperienceMultiplier: 1,
	}
}

func newPlayer(t *testing.T, clock cooldown.Clock) *entity.Player {
	t.Helper()
	return entity.NewPlayer(entity.Vec{X: 1600, Y: 1600}, defaultStats(), bounds, clock, zap.NewNop())
}

// fakeWorld is a minimal entity.World recording structural requests.
type fakeWorld struct {
	clock    *cooldown.ManualClock
	player   *entity.Player
	monsters []*entity.Monster
	bullets  []*entity.Bullet
	removed  []*entity.Monster
	timer    int
}

func newFakeWorld(t *testing.T) *fakeWorld {
	t.Helper()
	clock := cooldown.NewManualClock(epoch)
	return &fakeWorld{clock: clock, player: newPlayer(t, clock)}
}

func (w *fakeWorld) Player() *entity.Player      { return w.player }
func (w *fakeWorld) Monsters() []*entity.Monster { return w.monsters }
func (w *fakeWorld) Timer() int                  { return w.timer }
func (w *fakeWorld) Bounds() entity.Rect         { return bounds }
func (w *fakeWorld) Clock() cooldown.Clock       { return w.clock }
func (w *fakeWorld) AddBullet(b *entity.Bullet)  { w.bullets = append(w.bullets, b) }
func (w *fakeWorld) RemoveMonster(m *entity.Monster) error {
	w.removed = append(w.removed, m)
	return nil
}
