// Package file stores a save slot as a JSON document on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// emptyDocument is written when the slot file does not exist yet.
var emptyDocument = []byte("{}")

// SlotStore keeps one save slot in a single file.
type SlotStore struct {
	path string
}

// NewSlotStore creates a SlotStore at path.
//
// Precondition: path must be non-empty.
func NewSlotStore(path string) *SlotStore {
	return &SlotStore{path: path}
}

// Path returns the slot file location.
func (s *SlotStore) Path() string { return s.path }

// Read returns the file contents, creating the file as an empty document
// when it does not exist.
func (s *SlotStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(emptyDocument); err != nil {
			return nil, err
		}
		return emptyDocument, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}

// Write replaces the file contents with data.
//
// Postcondition: The parent directory exists and the file holds data.
func (s *SlotStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(data)
}

func (s *SlotStore) write(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	// Readers never observe a partially written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
