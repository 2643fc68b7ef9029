package loot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/entity"
	"github.com/cory-johannsen/survivor/internal/game/loot"
)

// fixedSource always returns v.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int { return f.v % n }

func newTable(t *testing.T) *loot.Table {
	t.Helper()
	tbl, err := loot.NewTable(config.Default().Loot)
	require.NoError(t, err)
	return tbl
}

func TestTable_DefaultBands(t *testing.T) {
	tbl := newTable(t)
	cases := []struct {
		roll int
		want loot.Outcome
	}{
		{0, loot.Outcome{}},
		{19, loot.Outcome{}},
		{20, loot.Outcome{Drop: true, Kind: entity.ExperienceGem}},
		{74, loot.Outcome{Drop: true, Kind: entity.ExperienceGem}},
		{75, loot.Outcome{Drop: true, Kind: entity.SpeedGem}},
		{80, loot.Outcome{Drop: true, Kind: entity.DamageGem}},
		{85, loot.Outcome{Drop: true, Kind: entity.DefenceGem}},
		{90, loot.Outcome{Drop: true, Kind: entity.HealthGem}},
		{94, loot.Outcome{Drop: true, Kind: entity.HealthGem}},
		{95, loot.Outcome{Drop: true, Kind: entity.ExperienceGem}},
		{99, loot.Outcome{Drop: true, Kind: entity.ExperienceGem}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tbl.Outcome(c.roll), "roll %d", c.roll)
	}
}

func TestTable_RollNoDrop(t *testing.T) {
	tbl := newTable(t)
	assert.Nil(t, tbl.Roll(fixedSource{v: 5}, entity.Vec{}))
}

func TestTable_RollPayloads(t *testing.T) {
	tbl := newTable(t)
	pos := entity.Vec{X: 100, Y: 100}

	xp := tbl.Roll(fixedSource{v: 30}, pos)
	require.NotNil(t, xp)
	assert.Equal(t, entity.ExperienceGem, xp.Kind())
	assert.Equal(t, 1, xp.Amount())
	assert.Equal(t, pos, xp.Position())

	speed := tbl.Roll(fixedSource{v: 76}, pos)
	require.NotNil(t, speed)
	assert.Equal(t, entity.SpeedGem, speed.Kind())
	assert.Equal(t, 2.0, speed.Boost())
	assert.Equal(t, 5*time.Second, speed.Duration())

	health := tbl.Roll(fixedSource{v: 92}, pos)
	require.NotNil(t, health)
	assert.Equal(t, 20.0, health.Boost())
}

func TestNewTable_RejectsOverweight(t *testing.T) {
	cfg := config.Default().Loot
	cfg.NoneWeight = 50
	_, err := loot.NewTable(cfg)
	assert.Error(t, err)
}

func TestNewTable_RejectsNegativeWeight(t *testing.T) {
	cfg := config.Default().Loot
	cfg.SpeedWeight = -1
	_, err := loot.NewTable(cfg)
	assert.Error(t, err)
}

func TestNewTable_ZeroNoneWeightAlwaysDrops(t *testing.T) {
	cfg := config.Default().Loot
	cfg.NoneWeight = 0
	tbl, err := loot.NewTable(cfg)
	require.NoError(t, err)

	for roll := 0; roll < 100; roll++ {
		assert.True(t, tbl.Outcome(roll).Drop, "roll %d", roll)
	}
}

func TestPropertyRollAlwaysValidKind(t *testing.T) {
	tbl := newTable(t)
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		p := tbl.Roll(dice.NewSeededSource(seed), entity.Vec{})
		if p != nil && !p.Kind().Valid() {
			t.Fatalf("invalid kind %q", p.Kind())
		}
	})
}
