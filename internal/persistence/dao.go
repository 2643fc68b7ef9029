package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/game/world"
)

// ErrNoSave is returned by LoadGame when the slot holds no saved game.
var ErrNoSave = errors.New("no saved game")

// emptySave is the content of a cleared slot.
var emptySave = []byte("{}")

// SlotStore reads and writes the raw bytes of one save slot.
//
// Read returns empty data and a nil error for a slot that was never written.
type SlotStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// GameDAO saves and restores a GameWorld through a SlotStore.
type GameDAO struct {
	store  SlotStore
	logger *zap.Logger
}

// NewGameDAO creates a GameDAO over store.
//
// Precondition: store and logger must be non-nil.
func NewGameDAO(store SlotStore, logger *zap.Logger) *GameDAO {
	return &GameDAO{store: store, logger: logger}
}

// SaveGame writes the snapshot of w to the slot.
func (d *GameDAO) SaveGame(ctx context.Context, w *world.GameWorld) error {
	data, err := Encode(Capture(w))
	if err != nil {
		return err
	}
	if err := d.store.Write(ctx, data); err != nil {
		return fmt.Errorf("writing save slot: %w", err)
	}
	d.logger.Info("game saved",
		zap.Int("timer", w.Timer()),
		zap.Int("monsters", len(w.Monsters())),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// LoadGame replaces the state of w with the saved snapshot.
//
// Postcondition: On any error w is unchanged. Returns ErrNoSave for an empty
// slot and an error wrapping ErrMalformedSnapshot for invalid data.
func (d *GameDAO) LoadGame(ctx context.Context, w *world.GameWorld) error {
	data, err := d.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading save slot: %w", err)
	}
	if isEmpty(data) {
		return ErrNoSave
	}
	s, err := Decode(data)
	if err != nil {
		return err
	}
	contents, err := Build(s, w)
	if err != nil {
		return err
	}
	w.LoadGameData(contents)
	d.logger.Info("game loaded",
		zap.Int("timer", contents.Timer),
		zap.Int("level", contents.Player.Level()),
		zap.Int("monsters", len(contents.Monsters)),
	)
	return nil
}

// HasSavedGameData reports whether the slot holds a saved game.
func (d *GameDAO) HasSavedGameData(ctx context.Context) (bool, error) {
	data, err := d.store.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("reading save slot: %w", err)
	}
	return !isEmpty(data), nil
}

// ClearSave empties the slot.
func (d *GameDAO) ClearSave(ctx context.Context) error {
	if err := d.store.Write(ctx, emptySave); err != nil {
		return fmt.Errorf("clearing save slot: %w", err)
	}
	d.logger.Info("save cleared")
	return nil
}

func isEmpty(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, emptySave)
}
