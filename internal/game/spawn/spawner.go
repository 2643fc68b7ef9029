package spawn

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

// Arena is where spawned monsters are placed.
type Arena interface {
	AddMonster(m *entity.Monster)
}

// Spawner places one monster of a uniformly random type at a uniformly
// random integer position each time its interval elapses.
type Spawner struct {
	factory *Factory
	gate    *cooldown.Handler
	roller  *dice.Roller
	width   int
	height  int
	logger  *zap.Logger
}

// NewSpawner creates a Spawner covering [0, width] x [0, height].
//
// Precondition: factory, clock, src and logger must be non-nil; width, height >= 0.
func NewSpawner(factory *Factory, clock cooldown.Clock, interval time.Duration, src dice.Source, width, height int, logger *zap.Logger) *Spawner {
	return &Spawner{
		factory: factory,
		gate:    cooldown.New(clock, interval),
		roller:  dice.NewLoggedRoller(src, logger),
		width:   width,
		height:  height,
		logger:  logger,
	}
}

// Factory returns the monster factory.
func (s *Spawner) Factory() *Factory { return s.factory }

// Update spawns a monster into arena when the spawn interval has elapsed and
// returns it, or nil when the spawner is cooling.
func (s *Spawner) Update(arena Arena) *entity.Monster {
	if !s.gate.TryAct() {
		return nil
	}
	return s.Spawn(arena)
}

// Spawn places one monster into arena regardless of the interval.
func (s *Spawner) Spawn(arena Arena) *entity.Monster {
	presets := s.factory.ordered
	preset := presets[s.roller.Draw("spawn type", len(presets))]
	pos := entity.Vec{
		X: float64(s.roller.Draw("spawn x", s.width+1)),
		Y: float64(s.roller.Draw("spawn y", s.height+1)),
	}
	m := s.factory.build(preset, pos)
	arena.AddMonster(m)
	s.logger.Debug("spawned monster",
		zap.String("type", preset.Type),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
	return m
}
