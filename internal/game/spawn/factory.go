package spawn

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

// ErrUnknownType is returned when a monster type has no preset.
var ErrUnknownType = errors.New("unknown monster type")

// Factory creates monsters from presets.
type Factory struct {
	presets         map[string]*Preset
	ordered         []*Preset
	clock           cooldown.Clock
	levelUpInterval time.Duration
}

// NewFactory creates a Factory over presets.
//
// Precondition: presets must be non-empty, each valid and of a distinct type;
// clock must be non-nil.
// Postcondition: Types() lists the preset types in the given order.
func NewFactory(presets []*Preset, clock cooldown.Clock, levelUpInterval time.Duration) (*Factory, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("monster factory: at least one preset is required")
	}
	f := &Factory{
		presets:         make(map[string]*Preset, len(presets)),
		clock:           clock,
		levelUpInterval: levelUpInterval,
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := f.presets[p.Type]; dup {
			return nil, fmt.Errorf("monster factory: duplicate type %q", p.Type)
		}
		f.presets[p.Type] = p
		f.ordered = append(f.ordered, p)
	}
	return f, nil
}

// Types returns the supported monster types.
func (f *Factory) Types() []string {
	types := make([]string, len(f.ordered))
	for i, p := range f.ordered {
		types[i] = p.Type
	}
	return types
}

// Preset returns the preset for kind.
func (f *Factory) Preset(kind string) (*Preset, bool) {
	p, ok := f.presets[kind]
	return p, ok
}

// LevelUpInterval returns the level-up interval given to every created monster.
func (f *Factory) LevelUpInterval() time.Duration {
	return f.levelUpInterval
}

// Create builds a monster of kind at pos.
//
// Postcondition: Returns an error wrapping ErrUnknownType when kind has no preset.
func (f *Factory) Create(kind string, pos entity.Vec) (*entity.Monster, error) {
	p, ok := f.presets[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return f.build(p, pos), nil
}

func (f *Factory) build(p *Preset, pos entity.Vec) *entity.Monster {
	return entity.NewMonster(p.Type, pos, p.Stats(), f.clock, f.levelUpInterval)
}
