// Package main runs the survival simulation headless: it restores the saved
// game, ticks the world until interrupted or the player dies, and saves on exit.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/collision"
	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/spawn"
	"github.com/cory-johannsen/survivor/internal/game/world"
	"github.com/cory-johannsen/survivor/internal/gameserver"
	"github.com/cory-johannsen/survivor/internal/observability"
	"github.com/cory-johannsen/survivor/internal/persistence"
	"github.com/cory-johannsen/survivor/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	fresh := flag.Bool("fresh", false, "ignore any saved game and start a new one")
	seed := flag.Uint64("seed", 0, "seed for simulation randomness; 0 = non-deterministic")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var presets []*spawn.Preset
	if cfg.Spawn.PresetsDir != "" {
		presets, err = spawn.LoadPresets(cfg.Spawn.PresetsDir)
		if err != nil {
			logger.Fatal("loading monster presets", zap.Error(err))
		}
		logger.Info("loaded monster presets", zap.Int("count", len(presets)))
	}

	src := dice.NewRandomSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	clock := cooldown.NewSystemClock()
	w, err := world.New(cfg.Game(), clock, src, presets, logger)
	if err != nil {
		logger.Fatal("creating world", zap.Error(err))
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening save slot", zap.Error(err))
	}
	defer closeStore()
	dao := persistence.NewGameDAO(store, logger)

	if !*fresh {
		switch err := dao.LoadGame(ctx, w); {
		case errors.Is(err, persistence.ErrNoSave):
			logger.Info("no saved game, starting fresh")
		case err != nil:
			logger.Fatal("restoring saved game", zap.Error(err))
		}
	}

	opts := []gameserver.Option{gameserver.WithPauser(clock)}
	lc := server.NewLifecycle(logger)

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewSimMetrics(reg)
		if err != nil {
			logger.Fatal("registering metrics", zap.Error(err))
		}
		opts = append(opts, gameserver.WithMetrics(metrics))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		lc.Add("metrics", &server.HTTPService{Server: srv, Logger: logger.Named("metrics")})
	}

	loop := gameserver.NewLoop(w,
		collision.NewHandler(cfg.Combat.ContactDamage, logger),
		roller,
		cfg.World.TickInterval(),
		logger,
		opts...,
	)

	gameOver := false
	lc.Add("simulation", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			go togglePauseOnSignal(ctx, loop)
			err := loop.Run(ctx)
			if errors.Is(err, gameserver.ErrGameOver) {
				gameOver = true
				return nil
			}
			return err
		},
		StopFn: func(ctx context.Context) error {
			if gameOver {
				return dao.ClearSave(ctx)
			}
			return dao.SaveGame(ctx, w)
		},
	})

	logger.Info("survivor ready",
		zap.Int("fps", cfg.World.FPS),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Error("survivor stopped with errors", zap.Error(err))
		closeStore()
		_ = logger.Sync()
		os.Exit(1)
	}

	stats := w.Stats()
	logger.Info("session summary",
		zap.Bool("game_over", gameOver),
		zap.Int("timer", w.Timer()),
		zap.Int("level", w.Player().Level()),
		zap.Uint64("monsters_killed", stats.MonstersKilled),
		zap.Uint64("pickups_collected", stats.PickupsCollected),
		zap.Uint64("ticks", loop.Ticks()),
	)
}

// togglePauseOnSignal pauses or resumes loop on every SIGUSR1 until ctx ends.
func togglePauseOnSignal(ctx context.Context, loop *gameserver.Loop) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			if loop.Paused() {
				loop.Resume()
			} else {
				loop.Pause()
			}
		}
	}
}
