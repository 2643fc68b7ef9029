package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/world"
)

func TestTileMap_Dimensions(t *testing.T) {
	tm := world.NewTileMap(config.WorldConfig{Width: 640, Height: 320, TileSize: 64})
	assert.Equal(t, 5, tm.Rows())
	assert.Equal(t, 10, tm.Cols())
}

func TestTileMap_BorderIsWallInteriorIsFloor(t *testing.T) {
	tm := world.NewTileMap(config.WorldConfig{Width: 640, Height: 640, TileSize: 64, Seed: 7})
	for r := 0; r < tm.Rows(); r++ {
		for c := 0; c < tm.Cols(); c++ {
			border := r == 0 || c == 0 || r == tm.Rows()-1 || c == tm.Cols()-1
			v := tm.Get(r, c)
			if border {
				assert.Equal(t, world.Wall, v, "(%d,%d)", r, c)
				continue
			}
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, world.FloorVariants)
			assert.True(t, tm.Walkable(r, c))
		}
	}
}

func TestTileMap_OutOfRangeIsWall(t *testing.T) {
	tm := world.NewTileMap(config.WorldConfig{Width: 640, Height: 640, TileSize: 64})
	assert.Equal(t, world.Wall, tm.Get(-1, 3))
	assert.Equal(t, world.Wall, tm.Get(3, 100))
}

func TestTileMap_SameSeedSameMap(t *testing.T) {
	cfg := config.WorldConfig{Width: 1280, Height: 1280, TileSize: 64, Seed: 99}
	a, b := world.NewTileMap(cfg), world.NewTileMap(cfg)
	for r := 0; r < a.Rows(); r++ {
		for c := 0; c < a.Cols(); c++ {
			assert.Equal(t, a.Get(r, c), b.Get(r, c))
		}
	}
}
