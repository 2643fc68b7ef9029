// Package badger stores save slots in an embedded Badger key-value database.
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

const keyPrefix = "save:"

// DB wraps an open Badger database.
type DB struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir.
//
// Precondition: dir must be a writable directory path.
// Postcondition: Returns an open DB or a non-nil error.
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Slot returns the store for the named slot.
//
// Precondition: name must be non-empty.
func (d *DB) Slot(name string) *SlotStore {
	return &SlotStore{db: d.db, key: []byte(keyPrefix + name)}
}

// SlotStore reads and writes one save slot.
type SlotStore struct {
	db  *badger.DB
	key []byte
}

// Read returns the slot's bytes, or empty data when the key is absent.
func (s *SlotStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	return data, nil
}

// Write stores data under the slot key.
func (s *SlotStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, data)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}
