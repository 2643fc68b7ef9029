// Package postgres stores save slots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/survivor/internal/config"
)

// Store owns the connection pool the save slots share.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database described by cfg and verifies it answers.
//
// Precondition: cfg must contain valid database connection parameters and the
// save_slots migration must have been applied.
// Postcondition: Returns a connected Store or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Health pings the database, giving up after timeout.
func (s *Store) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases the pool. Slots obtained from s are unusable afterwards.
func (s *Store) Close() {
	s.pool.Close()
}

// Slot returns the store for the named slot.
//
// Precondition: name must be non-empty.
func (s *Store) Slot(name string) *SlotStore {
	return &SlotStore{db: s.pool, slot: name}
}

// Slots lists every stored slot name in ascending order.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT slot FROM save_slots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning slots: %w", err)
	}
	return slots, nil
}
