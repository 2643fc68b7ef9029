package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/persistence"
	badgerstore "github.com/cory-johannsen/survivor/internal/storage/badger"
	"github.com/cory-johannsen/survivor/internal/storage/file"
	"github.com/cory-johannsen/survivor/internal/storage/postgres"
)

// openStore returns the configured save slot and a function releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (persistence.SlotStore, func(), error) {
	start := time.Now()
	switch cfg.Storage.Backend {
	case "file":
		logger.Info("using file save slot", zap.String("path", cfg.Storage.Path))
		return file.NewSlotStore(cfg.Storage.Path), func() {}, nil
	case "badger":
		db, err := badgerstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("badger save slot opened",
			zap.String("path", cfg.Storage.Path),
			zap.String("slot", cfg.Storage.Slot),
			zap.Duration("elapsed", time.Since(start)),
		)
		return db.Slot(cfg.Storage.Slot), func() { _ = db.Close() }, nil
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("slot", cfg.Storage.Slot),
			zap.Duration("elapsed", time.Since(start)),
		)
		return db.Slot(cfg.Storage.Slot), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
