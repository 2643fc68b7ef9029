package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotStore persists one named save slot as a row of save_slots.
type SlotStore struct {
	db   *pgxpool.Pool
	slot string
}

// Read returns the slot's snapshot, or empty data when the slot has no row.
//
// Postcondition: Returns (nil, nil) when the slot was never written.
func (s *SlotStore) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM save_slots WHERE slot = $1`,
		s.slot,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", s.slot, err)
	}
	return data, nil
}

// Write upserts the slot's snapshot.
//
// Precondition: data must be a JSON document.
// Postcondition: The slot row holds data and a refreshed updated_at.
func (s *SlotStore) Write(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO save_slots (slot, data)
		 VALUES ($1, $2)
		 ON CONFLICT (slot) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		s.slot, data,
	)
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", s.slot, err)
	}
	return nil
}
