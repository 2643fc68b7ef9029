package entity_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

func specFor(t *testing.T, kind entity.WeaponKind) entity.WeaponSpec {
	t.Helper()
	for _, s := range entity.DefaultWeaponSpecs() {
		if s.Kind == kind {
			return s
		}
	}
	t.Fatalf("no weapon spec %q", kind)
	return entity.WeaponSpec{}
}

func TestDefaultWeaponSpecs_Ordered(t *testing.T) {
	specs := entity.DefaultWeaponSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, entity.Pistol, specs[0].Kind)
	assert.Equal(t, entity.Shotgun, specs[1].Kind)
	assert.Equal(t, entity.Minigun, specs[2].Kind)
	assert.Equal(t, []int{1, 4, 8}, []int{specs[0].RequiredLevel, specs[1].RequiredLevel, specs[2].RequiredLevel})
}

func TestShotgun_FiresFiveBulletsInSpread(t *testing.T) {
	w := newFakeWorld(t)
	gun := entity.NewWeapon(specFor(t, entity.Shotgun), w.clock)
	src := entity.Vec{X: 100, Y: 100}

	n := gun.Shoot(w, src, entity.Vec{X: 200, Y: 100})

	require.Equal(t, 5, n)
	require.Len(t, w.bullets, 5)
	for i, offset := range []float64{-0.1, -0.05, 0, 0.05, 0.1} {
		b := w.bullets[i]
		assert.Equal(t, src, b.Position())
		assert.InDelta(t, math.Cos(offset), b.Direction().X, 1e-9)
		assert.InDelta(t, math.Sin(offset), b.Direction().Y, 1e-9)
		assert.Equal(t, 4.0, b.Speed())
	}

	assert.Zero(t, gun.Shoot(w, src, entity.Vec{X: 200, Y: 100}), "all five share one cooldown gate")
	w.clock.Advance(600 * time.Millisecond)
	assert.Equal(t, 5, gun.Shoot(w, src, entity.Vec{X: 200, Y: 100}))
}

func TestPistol_SingleBulletAtTarget(t *testing.T) {
	w := newFakeWorld(t)
	gun := entity.NewWeapon(specFor(t, entity.Pistol), w.clock)

	n := gun.Shoot(w, entity.Vec{}, entity.Vec{X: 3, Y: 4})

	require.Equal(t, 1, n)
	assert.InDelta(t, 0.6, w.bullets[0].Direction().X, 1e-9)
	assert.InDelta(t, 0.8, w.bullets[0].Direction().Y, 1e-9)
}

func TestMinigun_ShortCooldown(t *testing.T) {
	w := newFakeWorld(t)
	gun := entity.NewWeapon(specFor(t, entity.Minigun), w.clock)

	fired := 0
	for i := 0; i < 10; i++ {
		fired += gun.Shoot(w, entity.Vec{}, entity.Vec{X: 1})
		w.clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, 5, fired)
}

func TestBulletDamageScalesWithPlayerDamage(t *testing.T) {
	w := newFakeWorld(t)
	w.player.AddDamage(2)
	gun := entity.NewWeapon(specFor(t, entity.Pistol), w.clock)

	gun.Shoot(w, entity.Vec{}, entity.Vec{X: 1})

	assert.Equal(t, 30, w.bullets[0].DamageAmount())
}

func TestBullet_ZeroDirectionWhenSourceIsTarget(t *testing.T) {
	b := entity.NewBullet(entity.Pistol, entity.Vec{X: 5, Y: 5}, entity.Vec{X: 5, Y: 5}, 5, 10)
	assert.Equal(t, entity.Vec{}, b.Direction())

	b.Update(nil)
	assert.Equal(t, entity.Vec{X: 5, Y: 5}, b.Position())
}

func TestBullet_UpdateMovesAlongDirection(t *testing.T) {
	b := entity.NewBullet(entity.Pistol, entity.Vec{}, entity.Vec{X: 0, Y: 10}, 5, 10)

	b.Update(nil)
	b.Update(nil)

	assert.InDelta(t, 0, b.Position().X, 1e-9)
	assert.InDelta(t, 10, b.Position().Y, 1e-9)
}

func TestBullet_SingleUse(t *testing.T) {
	b := entity.NewBullet(entity.Pistol, entity.Vec{}, entity.Vec{X: 1}, 5, 10)
	assert.Equal(t, 1, b.Health())
	assert.False(t, b.Spent())

	b.TakeDamage(1)
	assert.True(t, b.Spent())
	b.TakeDamage(1)
	assert.Equal(t, 0, b.Health())
}

func TestBullet_OutOf(t *testing.T) {
	b := entity.NewBullet(entity.Pistol, entity.Vec{X: 10, Y: 10}, entity.Vec{X: -1, Y: 10}, 20, 10)
	assert.False(t, b.OutOf(bounds))

	b.Update(nil)
	assert.True(t, b.OutOf(bounds))
}

func TestPropertyBulletDirectionIsUnitOrZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := entity.Vec{X: rapid.Float64Range(-1000, 1000).Draw(t, "sx"), Y: rapid.Float64Range(-1000, 1000).Draw(t, "sy")}
		dst := entity.Vec{X: rapid.Float64Range(-1000, 1000).Draw(t, "dx"), Y: rapid.Float64Range(-1000, 1000).Draw(t, "dy")}
		b := entity.NewBullet(entity.Pistol, src, dst, 5, 10)

		l := b.Direction().Len()
		if src == dst {
			if l != 0 {
				t.Fatalf("direction %v for src == dst", b.Direction())
			}
			return
		}
		if math.Abs(l-1) > 1e-9 {
			t.Fatalf("direction length %f", l)
		}
	})
}

func TestPropertyWeaponGateIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := cooldown.NewManualClock(epoch)
		w := &fakeWorld{clock: clock}
		gun := entity.NewWeapon(entity.DefaultWeaponSpecs()[0], clock)
		attempts := rapid.IntRange(1, 20).Draw(t, "attempts")

		fired := 0
		for i := 0; i < attempts; i++ {
			fired += gun.Shoot(w, entity.Vec{}, entity.Vec{X: 1})
		}
		if fired != 1 {
			t.Fatalf("fired %d bullets without the clock advancing", fired)
		}
	})
}
