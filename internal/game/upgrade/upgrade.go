// Package upgrade implements the level-up item catalog: each level gained
// lets the player choose one item, which applies a permanent stat bonus and
// then advances to its next, stronger level.
package upgrade

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/entity"
)

// ErrUnknownItem is returned when an item ID is not in the catalog.
var ErrUnknownItem = errors.New("unknown upgrade item")

// Effect names the player stat an item improves.
type Effect string

const (
	MaxHealth            Effect = "max_health"
	Speed                Effect = "speed"
	Damage               Effect = "damage"
	Defence              Effect = "defence"
	ExperienceMultiplier Effect = "experience_multiplier"
	Autoheal             Effect = "autoheal"
)

// Item is one upgrade with a value per level.
//
// Invariant: 1 <= Level() <= MaxLevel().
type Item struct {
	ID          string
	Name        string
	Description string
	Effect      Effect
	Values      []float64
	level       int
}

// Level returns the item's current level, starting at 1.
func (i *Item) Level() int { return i.level }

// MaxLevel returns the number of levels the item has.
func (i *Item) MaxLevel() int { return len(i.Values) }

// Value returns the bonus applied at the current level.
func (i *Item) Value() float64 { return i.Values[i.level-1] }

// Apply grants the item's current bonus to p.
func (i *Item) Apply(p *entity.Player) {
	v := i.Value()
	switch i.Effect {
	case MaxHealth:
		p.AddMaxHealth(int(v))
	case Speed:
		p.AddSpeed(v)
	case Damage:
		p.AddDamage(int(v))
	case Defence:
		p.AddDefence(int(v))
	case ExperienceMultiplier:
		p.AddExperienceMultiplier(v)
	case Autoheal:
		p.AddAutoheal(int(v))
	}
}

func (i *Item) levelUp() {
	if i.level < len(i.Values) {
		i.level++
	}
}

func (i *Item) String() string {
	return fmt.Sprintf("%s (level %d): %s", i.Name, i.level, i.Description)
}

// Catalog holds the items offered on level-up.
type Catalog struct {
	items []*Item
	byID  map[string]*Item
}

// NewCatalog creates a catalog of the built-in items, each at level 1.
func NewCatalog() *Catalog {
	items := []*Item{
		{ID: "health_elixir", Name: "Health Elixir", Description: "Raises maximum health.", Effect: MaxHealth, Values: []float64{20, 40, 60, 80, 100}},
		{ID: "speed_boots", Name: "Speed Boots", Description: "Raises movement speed.", Effect: Speed, Values: []float64{2, 4, 6, 8, 10}},
		{ID: "warrior_fury", Name: "Warrior Fury", Description: "Raises damage dealt.", Effect: Damage, Values: []float64{5, 10, 15, 20, 25}},
		{ID: "brave_shield", Name: "Brave Shield", Description: "Raises defence.", Effect: Defence, Values: []float64{3, 6, 9, 12, 15}},
		{ID: "wisdom_amulet", Name: "Wisdom Amulet", Description: "Raises experience gained.", Effect: ExperienceMultiplier, Values: []float64{0.5, 1, 1.5, 2, 2.5}},
		{ID: "healing_ring", Name: "Healing Ring", Description: "Raises health regained per autoheal.", Effect: Autoheal, Values: []float64{1, 2, 3, 4, 5}},
	}
	c := &Catalog{byID: make(map[string]*Item, len(items))}
	for _, it := range items {
		it.level = 1
		c.items = append(c.items, it)
		c.byID[it.ID] = it
	}
	return c
}

// Items returns every item in catalog order.
func (c *Catalog) Items() []*Item {
	return append([]*Item(nil), c.items...)
}

// Item returns the item with id.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Offer returns n distinct items chosen uniformly at random from src.
// n is capped at the catalog size.
func (c *Catalog) Offer(src dice.Source, n int) []*Item {
	pool := c.Items()
	n = min(max(n, 0), len(pool))
	for i := 0; i < n; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Choose applies the item with id to p and advances the item's level.
//
// Postcondition: Returns an error wrapping ErrUnknownItem and changes
// nothing when id is not in the catalog.
func (c *Catalog) Choose(id string, p *entity.Player) error {
	it, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	it.Apply(p)
	it.levelUp()
	return nil
}

// Levels returns the current level of every item keyed by item ID.
func (c *Catalog) Levels() map[string]int {
	out := make(map[string]int, len(c.items))
	for _, it := range c.items {
		out[it.ID] = it.level
	}
	return out
}

// CheckLevels reports whether levels could be passed to SetLevels.
//
// Postcondition: Returns an error wrapping ErrUnknownItem for an ID not in
// the catalog, or an error for a level outside [1, MaxLevel()].
func (c *Catalog) CheckLevels(levels map[string]int) error {
	for id, lvl := range levels {
		it, ok := c.byID[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
		if lvl < 1 || lvl > it.MaxLevel() {
			return fmt.Errorf("item %q: level must be in [1, %d], got %d", id, it.MaxLevel(), lvl)
		}
	}
	return nil
}

// SetLevels replaces every item's level. Items absent from levels return
// to level 1.
//
// Postcondition: On error nothing changes.
func (c *Catalog) SetLevels(levels map[string]int) error {
	if err := c.CheckLevels(levels); err != nil {
		return err
	}
	for _, it := range c.items {
		it.level = 1
	}
	for id, lvl := range levels {
		c.byID[id].level = lvl
	}
	return nil
}
