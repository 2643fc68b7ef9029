package entity_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

func TestNewPlayer_Defaults(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))

	assert.Equal(t, 100, p.Health())
	assert.Equal(t, 100, p.MaxHealth())
	assert.Equal(t, 1, p.Level())
	assert.Equal(t, 0, p.Experience())
	assert.Equal(t, 2, p.ExperienceToNextLevel())
	assert.Equal(t, entity.Pistol, p.Weapon().Kind())
	assert.NotEmpty(t, p.ID())
}

func TestPlayer_LevelUpScenario(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	gem := entity.NewPickup(entity.ExperienceGem, p.Position(), 2, 0, 0)

	p.PickupGem(gem)

	assert.Equal(t, 2, p.Level())
	assert.Equal(t, 0, p.Experience())
	assert.Equal(t, 200, p.MaxHealth())
	assert.Equal(t, 200, p.Health())
	assert.Equal(t, 1, p.PendingUpgrades())
}

func TestPlayer_LevelUpKeepsDamageTaken(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	p.TakeDamage(30)

	p.GainExperience(2)

	assert.Equal(t, 200, p.MaxHealth())
	assert.Equal(t, 170, p.Health())
}

func TestPlayer_LevelUpIsALoop(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))

	// 2 + 4 + 8 = 14 reaches level 4 with 1 left over.
	p.GainExperience(15)

	assert.Equal(t, 4, p.Level())
	assert.Equal(t, 1, p.Experience())
	assert.Equal(t, 3, p.PendingUpgrades())
	assert.Equal(t, entity.Shotgun, p.Weapon().Kind(), "shotgun unlocks at level 4")
}

func TestPlayer_MinigunAtLevelEight(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))

	// sum of thresholds for levels 1..7 = 2^8 - 2
	p.GainExperience(254)

	assert.Equal(t, 8, p.Level())
	assert.Equal(t, entity.Minigun, p.Weapon().Kind())
}

func TestPlayer_ExperienceMultiplier(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	stats := defaultStats()
	stats.ExperienceMultiplier = 1.5
	p := entity.NewPlayer(entity.Vec{}, stats, bounds, clock, zap.NewNop())

	p.GainExperience(1)

	assert.Equal(t, 1, p.Experience(), "1 * 1.5 truncates to 1")
	p.GainExperience(2)
	assert.Equal(t, 2, p.Level())
	assert.Equal(t, 2, p.Experience())
}

func TestPlayer_TakeDamageReducedByDefence(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	stats := defaultStats()
	stats.Defence = 3
	p := entity.NewPlayer(entity.Vec{}, stats, bounds, clock, zap.NewNop())

	p.TakeDamage(10)
	assert.Equal(t, 93, p.Health())

	p.TakeDamage(2)
	assert.Equal(t, 93, p.Health(), "damage below defence is absorbed")

	p.TakeDamage(1000)
	assert.Equal(t, 0, p.Health())
	assert.True(t, p.IsDead())
}

func TestPlayer_MoveClampedToBounds(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))

	p.Move(1, 0)
	assert.Equal(t, entity.Vec{X: 1605, Y: 1600}, p.Position())

	for i := 0; i < 1000; i++ {
		p.Move(-1, -1)
	}
	assert.Equal(t, entity.Vec{}, p.Position())
}

func TestPlayer_ChangeWeaponRevertsBelowRequiredLevel(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))

	assert.False(t, p.ChangeWeapon(1))
	assert.Equal(t, entity.Pistol, p.Weapon().Kind())

	assert.False(t, p.ChangeWeapon(-1), "wrapping to the minigun is also gated")
	assert.Equal(t, entity.Pistol, p.Weapon().Kind())
}

func TestPlayer_ChangeWeaponCycles(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	p.GainExperience(254)
	require.Equal(t, entity.Minigun, p.Weapon().Kind())

	assert.True(t, p.ChangeWeapon(1))
	assert.Equal(t, entity.Pistol, p.Weapon().Kind())
	assert.True(t, p.ChangeWeapon(-1))
	assert.Equal(t, entity.Minigun, p.Weapon().Kind())
	assert.True(t, p.ChangeWeapon(-1))
	assert.Equal(t, entity.Shotgun, p.Weapon().Kind())
}

func TestPlayer_BuffsDoNotStack(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	p := newPlayer(t, clock)
	gem := entity.NewPickup(entity.SpeedGem, p.Position(), 0, 2, 5*time.Second)

	p.PickupGem(gem)
	p.PickupGem(gem)
	assert.Equal(t, 7.0, p.Speed())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 5.0, p.Speed(), "boost expires")

	p.PickupGem(gem)
	assert.Equal(t, 7.0, p.Speed(), "a new boost applies after expiry")
}

func TestPlayer_DamageAndDefenceGems(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	p := newPlayer(t, clock)

	p.PickupGem(entity.NewPickup(entity.DamageGem, p.Position(), 0, 1, 5*time.Second))
	p.PickupGem(entity.NewPickup(entity.DefenceGem, p.Position(), 0, 2, 5*time.Second))

	assert.Equal(t, 2, p.Damage())
	assert.Equal(t, 2, p.Defence())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, p.Damage())
	assert.Equal(t, 0, p.Defence())
}

func TestPlayer_HealthGemHealsClamped(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	p.TakeDamage(10)

	p.PickupGem(entity.NewPickup(entity.HealthGem, p.Position(), 0, 20, 0))

	assert.Equal(t, 100, p.Health())
}

func TestPlayer_AutohealOnInterval(t *testing.T) {
	w := newFakeWorld(t)
	w.player.TakeDamage(10)

	w.player.Update(w)
	assert.Equal(t, 91, w.player.Health())

	w.clock.Advance(500 * time.Millisecond)
	w.player.Update(w)
	assert.Equal(t, 91, w.player.Health())

	w.clock.Advance(500 * time.Millisecond)
	w.player.Update(w)
	assert.Equal(t, 92, w.player.Health())
}

func TestPlayer_UpdateShootsNearestMonster(t *testing.T) {
	w := newFakeWorld(t)
	stats := entity.MonsterStats{Health: 10, Damage: 5, AttackRange: 50, Speed: 2}
	far := entity.NewMonster("zombie", entity.Vec{X: 1600, Y: 2000}, stats, w.clock, 10*time.Second)
	near := entity.NewMonster("zombie", entity.Vec{X: 1700, Y: 1600}, stats, w.clock, 10*time.Second)
	w.monsters = []*entity.Monster{far, near}

	w.player.Update(w)

	require.Len(t, w.bullets, 1)
	assert.Equal(t, entity.Vec{X: 1, Y: 0}, w.bullets[0].Direction())
	assert.Equal(t, 10, w.bullets[0].DamageAmount())

	w.player.Update(w)
	assert.Len(t, w.bullets, 1, "pistol is still cooling")

	w.clock.Advance(500 * time.Millisecond)
	w.player.Update(w)
	assert.Len(t, w.bullets, 2)
}

func TestPlayer_NoMonstersNoShot(t *testing.T) {
	w := newFakeWorld(t)
	w.player.Update(w)
	assert.Empty(t, w.bullets)
}

func TestPlayer_UpgradeSetters(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	p.GainExperience(2)

	p.AddMaxHealth(10)
	p.AddSpeed(0.5)
	p.AddDamage(2)
	p.AddDefence(1)
	p.AddAutoheal(3)
	p.AddExperienceMultiplier(0.25)

	assert.Equal(t, 220, p.MaxHealth(), "increment is scaled by level")
	assert.Equal(t, 220, p.Health())
	assert.Equal(t, 5.5, p.Speed())
	assert.Equal(t, 3, p.Damage())
	assert.Equal(t, 1, p.Defence())
	assert.Equal(t, 4, p.Autoheal())
	assert.Equal(t, 1.25, p.ExperienceMultiplier())
}

func TestPlayer_ConsumePendingUpgrade(t *testing.T) {
	p := newPlayer(t, cooldown.NewManualClock(epoch))
	assert.False(t, p.ConsumePendingUpgrade())

	p.GainExperience(6)
	require.Equal(t, 2, p.PendingUpgrades())
	assert.True(t, p.ConsumePendingUpgrade())
	assert.True(t, p.ConsumePendingUpgrade())
	assert.False(t, p.ConsumePendingUpgrade())
}

func TestRestorePlayer_RoundTrip(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	p := newPlayer(t, clock)
	p.GainExperience(15)
	p.TakeDamage(50)
	p.AddDamage(2)

	restored, err := entity.RestorePlayer(p.State(), time.Second, bounds, clock, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, p.State(), restored.State())
}

func TestPlayer_GainExperienceStopsAtMaxLevel(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	s := newPlayer(t, clock).State()
	s.Level = entity.MaxLevel - 1
	s.MaxHealth = 100 * s.Level
	s.Health = s.MaxHealth
	s.Experience = 2<<(entity.MaxLevel-2) - 1

	p, err := entity.RestorePlayer(s, time.Second, bounds, clock, zap.NewNop())
	require.NoError(t, err)
	require.Positive(t, p.ExperienceToNextLevel())

	for range 1000 {
		p.GainExperience(math.MaxInt32)
	}

	assert.Equal(t, entity.MaxLevel, p.Level())
	assert.Positive(t, p.ExperienceToNextLevel())
	assert.LessOrEqual(t, p.Experience(), p.ExperienceToNextLevel())
	assert.Equal(t, 1, p.PendingUpgrades())

	restored, err := entity.RestorePlayer(p.State(), time.Second, bounds, clock, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, p.State(), restored.State())
}

func TestRestorePlayer_RejectsInvalidState(t *testing.T) {
	clock := cooldown.NewManualClock(epoch)
	base := newPlayer(t, clock).State()

	cases := map[string]func(s *entity.PlayerState){
		"level zero":       func(s *entity.PlayerState) { s.Level = 0 },
		"level too high":   func(s *entity.PlayerState) { s.Level = 10000 },
		"health over max":  func(s *entity.PlayerState) { s.Health = s.MaxHealth + 1 },
		"negative health":  func(s *entity.PlayerState) { s.Health = -1 },
		"unknown weapon":   func(s *entity.PlayerState) { s.Weapon = "bow" },
		"negative xp":      func(s *entity.PlayerState) { s.Experience = -1 },
		"negative pending": func(s *entity.PlayerState) { s.PendingUpgrades = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := base
			mutate(&s)
			_, err := entity.RestorePlayer(s, time.Second, bounds, clock, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

// Property-based tests

func TestPropertyTakeDamage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := cooldown.NewManualClock(epoch)
		stats := defaultStats()
		stats.Defence = rapid.IntRange(0, 50).Draw(t, "defence")
		p := entity.NewPlayer(entity.Vec{}, stats, bounds, clock, zap.NewNop())
		d := rapid.IntRange(0, 500).Draw(t, "damage")

		before := p.Health()
		p.TakeDamage(d)

		want := max(0, before-max(0, d-stats.Defence))
		if p.Health() != want {
			t.Fatalf("health %d, want %d", p.Health(), want)
		}
	})
}

func TestPropertyLevelMonotonicAndThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := entity.NewPlayer(entity.Vec{}, defaultStats(), bounds, cooldown.NewManualClock(epoch), zap.NewNop())
		gains := rapid.SliceOfN(rapid.IntRange(0, 200), 1, 20).Draw(t, "gains")

		prev := p.Level()
		for _, g := range gains {
			p.GainExperience(g)
			if p.Level() < prev {
				t.Fatalf("level decreased from %d to %d", prev, p.Level())
			}
			prev = p.Level()
			if want := 2 * (1 << (p.Level() - 1)); p.ExperienceToNextLevel() != want {
				t.Fatalf("threshold %d at level %d, want %d", p.ExperienceToNextLevel(), p.Level(), want)
			}
			if p.Experience() >= p.ExperienceToNextLevel() {
				t.Fatalf("experience %d not below threshold %d", p.Experience(), p.ExperienceToNextLevel())
			}
			if p.Health() < 0 || p.Health() > p.MaxHealth() {
				t.Fatalf("health %d outside [0, %d]", p.Health(), p.MaxHealth())
			}
		}
	})
}
