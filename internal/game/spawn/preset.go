// Package spawn creates monsters from type presets and places them in the
// world on a fixed interval.
package spawn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/survivor/internal/game/entity"
)

// Preset holds the base stats of one monster type.
type Preset struct {
	Type        string  `yaml:"type"`
	Health      int     `yaml:"health"`
	Damage      int     `yaml:"damage"`
	AttackRange float64 `yaml:"attack_range"`
	Speed       float64 `yaml:"speed"`
}

// Validate checks that the preset satisfies basic invariants.
//
// Precondition: p must not be nil.
// Postcondition: Returns nil iff Type is non-empty, Health >= 1, Damage >= 0,
// AttackRange > 0 and Speed >= 0; returns an error on the first violation otherwise.
func (p *Preset) Validate() error {
	if p.Type == "" {
		return fmt.Errorf("monster preset: type must not be empty")
	}
	if p.Health < 1 {
		return fmt.Errorf("monster preset %q: health must be >= 1", p.Type)
	}
	if p.Damage < 0 {
		return fmt.Errorf("monster preset %q: damage must be >= 0", p.Type)
	}
	if p.AttackRange <= 0 {
		return fmt.Errorf("monster preset %q: attack_range must be > 0", p.Type)
	}
	if p.Speed < 0 {
		return fmt.Errorf("monster preset %q: speed must be >= 0", p.Type)
	}
	return nil
}

// Stats converts the preset to entity monster stats.
func (p *Preset) Stats() entity.MonsterStats {
	return entity.MonsterStats{
		Health:      p.Health,
		Damage:      p.Damage,
		AttackRange: p.AttackRange,
		Speed:       p.Speed,
	}
}

// DefaultPresets returns the built-in monster types.
func DefaultPresets() []*Preset {
	return []*Preset{
		{Type: "zombie", Health: 10, Damage: 5, AttackRange: 50, Speed: 2},
		{Type: "skeleton", Health: 15, Damage: 10, AttackRange: 50, Speed: 2},
		{Type: "orc", Health: 20, Damage: 15, AttackRange: 60, Speed: 2},
		{Type: "werewolf", Health: 25, Damage: 20, AttackRange: 60, Speed: 2},
	}
}

// LoadPresetFromBytes parses a single monster preset from raw YAML bytes.
//
// Postcondition: Returns a validated *Preset, or an error.
func LoadPresetFromBytes(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPresets reads all *.yaml files in dir and returns the parsed presets
// in file name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all presets or an error on the first parse or
// validate failure, or on a duplicate type.
func LoadPresets(dir string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading presets dir %q: %w", dir, err)
	}

	seen := make(map[string]string)
	var presets []*Preset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		p, err := LoadPresetFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if prev, ok := seen[p.Type]; ok {
			return nil, fmt.Errorf("loading %q: type %q already defined in %q", path, p.Type, prev)
		}
		seen[p.Type] = path
		presets = append(presets, p)
	}
	return presets, nil
}
