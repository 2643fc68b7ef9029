package world

import (
	"github.com/aquilax/go-perlin"

	"github.com/cory-johannsen/survivor/internal/config"
)

const (
	// Wall is the tile index of the impassable border.
	Wall = 0
	// FloorVariants is the number of walkable floor tile indices, 1..FloorVariants.
	FloorVariants = 4
)

// Perlin parameters for floor variation.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = int32(3)
	noiseScale   = 0.1
)

// TileMap is the static grid renderers draw beneath the entities. Border
// tiles are walls; interior tiles are floor variants chosen from Perlin
// noise so the same seed always yields the same map.
type TileMap struct {
	rows, cols int
	tiles      [][]int
}

// NewTileMap generates the tile map for cfg.
//
// Precondition: cfg.TileSize > 0.
// Postcondition: Rows() == cfg.Height/cfg.TileSize and Cols() == cfg.Width/cfg.TileSize.
func NewTileMap(cfg config.WorldConfig) *TileMap {
	rows, cols := cfg.Height/cfg.TileSize, cfg.Width/cfg.TileSize
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, cfg.Seed)

	tiles := make([][]int, rows)
	for r := range tiles {
		tiles[r] = make([]int, cols)
		for c := range tiles[r] {
			if r == 0 || r == rows-1 || c == 0 || c == cols-1 {
				tiles[r][c] = Wall
				continue
			}
			// Noise2D is in [-1, 1].
			n := (noise.Noise2D(float64(c)*noiseScale, float64(r)*noiseScale) + 1) / 2
			tiles[r][c] = 1 + min(FloorVariants-1, max(0, int(n*FloorVariants)))
		}
	}
	return &TileMap{rows: rows, cols: cols, tiles: tiles}
}

// Rows returns the number of tile rows.
func (t *TileMap) Rows() int { return t.rows }

// Cols returns the number of tile columns.
func (t *TileMap) Cols() int { return t.cols }

// Get returns the tile index at (row, col). Coordinates outside the map are walls.
func (t *TileMap) Get(row, col int) int {
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		return Wall
	}
	return t.tiles[row][col]
}

// Walkable reports whether the tile at (row, col) is floor.
func (t *TileMap) Walkable(row, col int) bool {
	return t.Get(row, col) != Wall
}
