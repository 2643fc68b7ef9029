// Package persistence converts a GameWorld to and from its JSON snapshot and
// stores snapshots in a save slot.
package persistence

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/cory-johannsen/survivor/internal/game/entity"
	"github.com/cory-johannsen/survivor/internal/game/world"
)

// ErrMalformedSnapshot is returned when snapshot data has missing keys,
// wrong types or values that violate an entity invariant.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// PlayerRecord is the persisted player.
type PlayerRecord struct {
	Health               int     `json:"health"`
	MaxHealth            int     `json:"max_health"`
	Experience           int     `json:"experience"`
	Level                int     `json:"level"`
	Speed                float64 `json:"speed"`
	Damage               int     `json:"damage"`
	Defence              int     `json:"defence"`
	Autoheal             int     `json:"autoheal"`
	ExperienceMultiplier float64 `json:"experience_multiplier"`
	WeaponType           string  `json:"weapon_type"`
	PosX                 float64 `json:"pos_x"`
	PosY                 float64 `json:"pos_y"`
	PendingUpgrades      int     `json:"pending_upgrades"`
}

// MonsterRecord is one persisted monster. Seq is the monster's index in the
// world's monster collection.
type MonsterRecord struct {
	ID              string  `json:"id"`
	Seq             int     `json:"seq"`
	PosX            float64 `json:"pos_x"`
	PosY            float64 `json:"pos_y"`
	Health          int     `json:"health"`
	MaxHealth       int     `json:"max_health"`
	Damage          int     `json:"damage"`
	AttackRange     float64 `json:"attack_range"`
	Speed           float64 `json:"speed"`
	LevelMultiplier int     `json:"level_multiplier"`
}

// BulletRecord is one persisted bullet.
type BulletRecord struct {
	ID     string  `json:"id"`
	Seq    int     `json:"seq"`
	PosX   float64 `json:"pos_x"`
	PosY   float64 `json:"pos_y"`
	DirX   float64 `json:"dir_x"`
	DirY   float64 `json:"dir_y"`
	Speed  float64 `json:"speed"`
	Damage int     `json:"damage"`
	Health int     `json:"health"`
}

// GemRecord is one persisted pickup.
type GemRecord struct {
	ID         string  `json:"id"`
	Seq        int     `json:"seq"`
	PosX       float64 `json:"pos_x"`
	PosY       float64 `json:"pos_y"`
	Amount     int     `json:"amount"`
	Boost      float64 `json:"boost"`
	DurationMS int64   `json:"duration_ms"`
}

// Snapshot is the complete persisted world. Collections are keyed by type
// tag; each record's seq restores the world's insertion order across tags.
// Upgrades maps item IDs to their catalog level.
type Snapshot struct {
	Player   PlayerRecord               `json:"player"`
	Monsters map[string][]MonsterRecord `json:"monsters"`
	Bullets  map[string][]BulletRecord  `json:"bullets"`
	Gems     map[string][]GemRecord     `json:"gems"`
	Timer    int                        `json:"timer"`
	Upgrades map[string]int             `json:"upgrades,omitempty"`
}

// The seq, pending_upgrades and upgrades keys are optional so that saves
// written before they existed still load.
var (
	snapshotKeys = []string{"player", "monsters", "bullets", "gems", "timer"}
	playerKeys   = []string{
		"health", "max_health", "experience", "level", "speed", "damage",
		"defence", "autoheal", "experience_multiplier", "weapon_type", "pos_x", "pos_y",
	}
	monsterKeys = []string{"id", "pos_x", "pos_y", "health", "max_health", "damage", "attack_range", "speed", "level_multiplier"}
	bulletKeys  = []string{"id", "pos_x", "pos_y", "dir_x", "dir_y", "speed", "damage", "health"}
	gemKeys     = []string{"id", "pos_x", "pos_y", "amount", "boost", "duration_ms"}
)

// Capture builds the snapshot of w.
func Capture(w *world.GameWorld) *Snapshot {
	ps := w.Player().State()
	s := &Snapshot{
		Player: PlayerRecord{
			Health:               ps.Health,
			MaxHealth:            ps.MaxHealth,
			Experience:           ps.Experience,
			Level:                ps.Level,
			Speed:                ps.Speed,
			Damage:               ps.Damage,
			Defence:              ps.Defence,
			Autoheal:             ps.Autoheal,
			ExperienceMultiplier: ps.ExperienceMultiplier,
			WeaponType:           string(ps.Weapon),
			PosX:                 ps.Position.X,
			PosY:                 ps.Position.Y,
			PendingUpgrades:      ps.PendingUpgrades,
		},
		Monsters: make(map[string][]MonsterRecord),
		Bullets:  make(map[string][]BulletRecord),
		Gems:     make(map[string][]GemRecord),
		Timer:    w.Timer(),
		Upgrades: w.Upgrades().Levels(),
	}
	for i, m := range w.Monsters() {
		ms := m.State()
		s.Monsters[ms.Kind] = append(s.Monsters[ms.Kind], MonsterRecord{
			ID:              ms.ID,
			Seq:             i,
			PosX:            ms.Position.X,
			PosY:            ms.Position.Y,
			Health:          ms.Health,
			MaxHealth:       ms.MaxHealth,
			Damage:          ms.Damage,
			AttackRange:     ms.AttackRange,
			Speed:           ms.Speed,
			LevelMultiplier: ms.LevelMultiplier,
		})
	}
	for i, b := range w.Bullets() {
		bs := b.State()
		kind := string(bs.Kind)
		s.Bullets[kind] = append(s.Bullets[kind], BulletRecord{
			ID:     bs.ID,
			Seq:    i,
			PosX:   bs.Position.X,
			PosY:   bs.Position.Y,
			DirX:   bs.Direction.X,
			DirY:   bs.Direction.Y,
			Speed:  bs.Speed,
			Damage: bs.Damage,
			Health: bs.Health,
		})
	}
	for i, p := range w.Pickups() {
		gs := p.State()
		kind := string(gs.Kind)
		s.Gems[kind] = append(s.Gems[kind], GemRecord{
			ID:         gs.ID,
			Seq:        i,
			PosX:       gs.Position.X,
			PosY:       gs.Position.Y,
			Amount:     gs.Amount,
			Boost:      gs.Boost,
			DurationMS: gs.Duration.Milliseconds(),
		})
	}
	return s
}

// Encode returns the indented JSON form of s. Equal snapshots always encode
// to identical bytes.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses data into a snapshot.
//
// Postcondition: Returns an error wrapping ErrMalformedSnapshot, naming the
// offending key path, when any key is missing, null or of the wrong type.
func Decode(data []byte) (*Snapshot, error) {
	top, err := object("snapshot", data, snapshotKeys)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if _, err := object("player", top["player"], playerKeys); err != nil {
		return nil, err
	}
	if err := unmarshal("player", top["player"], &s.Player); err != nil {
		return nil, err
	}
	if err := unmarshal("timer", top["timer"], &s.Timer); err != nil {
		return nil, err
	}
	if s.Monsters, err = groups[MonsterRecord]("monsters", top["monsters"], monsterKeys); err != nil {
		return nil, err
	}
	if s.Bullets, err = groups[BulletRecord]("bullets", top["bullets"], bulletKeys); err != nil {
		return nil, err
	}
	if s.Gems, err = groups[GemRecord]("gems", top["gems"], gemKeys); err != nil {
		return nil, err
	}
	if raw, ok := top["upgrades"]; ok {
		if _, err := object("upgrades", raw, nil); err != nil {
			return nil, err
		}
		if err := unmarshal("upgrades", raw, &s.Upgrades); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// object decodes raw as a JSON object and checks that every required key
// is present and non-null.
func object(path string, raw json.RawMessage, required []string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, path, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: %s: must be an object", ErrMalformedSnapshot, path)
	}
	for _, k := range required {
		v, ok := fields[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s: missing", ErrMalformedSnapshot, path, k)
		}
		if string(v) == "null" {
			return nil, fmt.Errorf("%w: %s.%s: null", ErrMalformedSnapshot, path, k)
		}
	}
	return fields, nil
}

func unmarshal(path string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, path, err)
	}
	return nil
}

// groups decodes a tag -> record list mapping, checking each record's keys.
func groups[T any](path string, raw json.RawMessage, required []string) (map[string][]T, error) {
	var lists map[string][]json.RawMessage
	if err := unmarshal(path, raw, &lists); err != nil {
		return nil, err
	}
	if lists == nil {
		return nil, fmt.Errorf("%w: %s: must be an object", ErrMalformedSnapshot, path)
	}
	out := make(map[string][]T, len(lists))
	for tag, items := range lists {
		records := make([]T, 0, len(items))
		for i, item := range items {
			p := fmt.Sprintf("%s.%s[%d]", path, tag, i)
			if _, err := object(p, item, required); err != nil {
				return nil, err
			}
			var r T
			if err := unmarshal(p, item, &r); err != nil {
				return nil, err
			}
			records = append(records, r)
		}
		out[tag] = records
	}
	return out, nil
}

// Build rebuilds every entity in s against w's configuration without
// touching w.
//
// Postcondition: Returns an error wrapping ErrMalformedSnapshot on the first
// record that cannot be rebuilt; no partial result is returned.
func Build(s *Snapshot, w *world.GameWorld) (world.Contents, error) {
	cfg := w.Config()
	factory := w.Spawner().Factory()

	player, err := entity.RestorePlayer(entity.PlayerState{
		Health:               s.Player.Health,
		MaxHealth:            s.Player.MaxHealth,
		Experience:           s.Player.Experience,
		Level:                s.Player.Level,
		Speed:                s.Player.Speed,
		Damage:               s.Player.Damage,
		Defence:              s.Player.Defence,
		Autoheal:             s.Player.Autoheal,
		ExperienceMultiplier: s.Player.ExperienceMultiplier,
		Weapon:               entity.WeaponKind(s.Player.WeaponType),
		Position:             entity.Vec{X: s.Player.PosX, Y: s.Player.PosY},
		PendingUpgrades:      s.Player.PendingUpgrades,
	}, cfg.Player.AutohealInterval, w.Bounds(), w.Clock(), w.Logger())
	if err != nil {
		return world.Contents{}, fmt.Errorf("%w: player: %v", ErrMalformedSnapshot, err)
	}
	if s.Timer < 0 {
		return world.Contents{}, fmt.Errorf("%w: timer must be >= 0, got %d", ErrMalformedSnapshot, s.Timer)
	}
	if err := w.Upgrades().CheckLevels(s.Upgrades); err != nil {
		return world.Contents{}, fmt.Errorf("%w: upgrades: %v", ErrMalformedSnapshot, err)
	}

	c := world.Contents{Player: player, Timer: s.Timer, Upgrades: maps.Clone(s.Upgrades)}
	var (
		monsters []ordered[*entity.Monster]
		bullets  []ordered[*entity.Bullet]
		pickups  []ordered[*entity.Pickup]
	)
	ids := make(map[string]string)
	claim := func(path, id string, seq int) error {
		if id == "" {
			return fmt.Errorf("%w: %s: id must not be empty", ErrMalformedSnapshot, path)
		}
		if seq < 0 {
			return fmt.Errorf("%w: %s: seq must be >= 0, got %d", ErrMalformedSnapshot, path, seq)
		}
		if prev, dup := ids[id]; dup {
			return fmt.Errorf("%w: %s: id %q already used by %s", ErrMalformedSnapshot, path, id, prev)
		}
		ids[id] = path
		return nil
	}

	for _, kind := range sortedKeys(s.Monsters) {
		if _, ok := factory.Preset(kind); !ok {
			return world.Contents{}, fmt.Errorf("%w: monsters.%s: unknown monster type", ErrMalformedSnapshot, kind)
		}
		for i, r := range s.Monsters[kind] {
			path := fmt.Sprintf("monsters.%s[%d]", kind, i)
			if err := claim(path, r.ID, r.Seq); err != nil {
				return world.Contents{}, err
			}
			m, err := entity.RestoreMonster(entity.MonsterState{
				ID:              r.ID,
				Kind:            kind,
				Position:        entity.Vec{X: r.PosX, Y: r.PosY},
				Health:          r.Health,
				MaxHealth:       r.MaxHealth,
				Damage:          r.Damage,
				AttackRange:     r.AttackRange,
				Speed:           r.Speed,
				LevelMultiplier: r.LevelMultiplier,
			}, w.Clock(), factory.LevelUpInterval())
			if err != nil {
				return world.Contents{}, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, path, err)
			}
			monsters = append(monsters, ordered[*entity.Monster]{r.Seq, m})
		}
	}

	weapons := make(map[entity.WeaponKind]bool)
	for _, spec := range entity.DefaultWeaponSpecs() {
		weapons[spec.Kind] = true
	}
	for _, kind := range sortedKeys(s.Bullets) {
		if !weapons[entity.WeaponKind(kind)] {
			return world.Contents{}, fmt.Errorf("%w: bullets.%s: unknown weapon", ErrMalformedSnapshot, kind)
		}
		for i, r := range s.Bullets[kind] {
			path := fmt.Sprintf("bullets.%s[%d]", kind, i)
			if err := claim(path, r.ID, r.Seq); err != nil {
				return world.Contents{}, err
			}
			if r.Health < 0 {
				return world.Contents{}, fmt.Errorf("%w: %s: health must be >= 0", ErrMalformedSnapshot, path)
			}
			bullets = append(bullets, ordered[*entity.Bullet]{r.Seq, entity.RestoreBullet(entity.BulletState{
				ID:        r.ID,
				Kind:      entity.WeaponKind(kind),
				Position:  entity.Vec{X: r.PosX, Y: r.PosY},
				Direction: entity.Vec{X: r.DirX, Y: r.DirY},
				Speed:     r.Speed,
				Damage:    r.Damage,
				Health:    r.Health,
			})})
		}
	}

	for _, kind := range sortedKeys(s.Gems) {
		for i, r := range s.Gems[kind] {
			path := fmt.Sprintf("gems.%s[%d]", kind, i)
			if err := claim(path, r.ID, r.Seq); err != nil {
				return world.Contents{}, err
			}
			p, err := entity.RestorePickup(entity.PickupState{
				ID:       r.ID,
				Kind:     entity.PickupKind(kind),
				Position: entity.Vec{X: r.PosX, Y: r.PosY},
				Amount:   r.Amount,
				Boost:    r.Boost,
				Duration: time.Duration(r.DurationMS) * time.Millisecond,
			})
			if err != nil {
				return world.Contents{}, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, path, err)
			}
			pickups = append(pickups, ordered[*entity.Pickup]{r.Seq, p})
		}
	}
	c.Monsters = inOrder(monsters)
	c.Bullets = inOrder(bullets)
	c.Pickups = inOrder(pickups)
	return c, nil
}

// ordered pairs a rebuilt entity with its persisted collection index.
type ordered[T any] struct {
	seq int
	v   T
}

// inOrder sorts items by seq, keeping the tag order among equal seqs, and
// returns the bare values. Records without seq all share 0.
func inOrder[T any](items []ordered[T]) []T {
	if len(items) == 0 {
		return nil
	}
	slices.SortStableFunc(items, func(a, b ordered[T]) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
