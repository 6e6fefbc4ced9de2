// Package main runs the TZMud server: it opens the object store, loads or
// seeds the world, and serves players over telnet until shut down.
// A restart builds a fresh generation of services over the same store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/config"
	"github.com/cory-johannsen/tzmud/internal/content"
	"github.com/cory-johannsen/tzmud/internal/frontend/telnet"
	"github.com/cory-johannsen/tzmud/internal/game/command"
	"github.com/cory-johannsen/tzmud/internal/game/mobs"
	"github.com/cory-johannsen/tzmud/internal/game/session"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/gameserver"
	"github.com/cory-johannsen/tzmud/internal/observability"
	"github.com/cory-johannsen/tzmud/internal/scripting"
	"github.com/cory-johannsen/tzmud/internal/server"
	"github.com/cory-johannsen/tzmud/internal/storage"
	"github.com/cory-johannsen/tzmud/internal/storage/bolt"
	"github.com/cory-johannsen/tzmud/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	fresh := flag.Bool("fresh", false, "discard the stored world and start from the seed")
	rollback := flag.Bool("rollback", false, "restore a backup before starting")
	rollbackName := flag.String("rollback-name", "", "backup to restore with -rollback (default newest)")
	backupOnly := flag.Bool("backup", false, "write a backup of the stored world and exit")
	flag.Parse()

	if *rollbackName != "" && !*rollback {
		log.Fatalf("-rollback-name needs -rollback")
	}

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

	store, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("opening store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	switch {
	case *backupOnly:
		name, err := store.Backup(ctx)
		if err != nil {
			logger.Fatal("writing backup", zap.Error(err))
		}
		fmt.Println(name)
		return
	case *fresh:
		if err := store.Reset(ctx); err != nil {
			logger.Fatal("resetting store", zap.Error(err))
		}
		logger.Info("store reset")
	case *rollback:
		if err := store.Restore(ctx, *rollbackName); err != nil {
			logger.Fatal("restoring backup", zap.String("backup", *rollbackName), zap.Error(err))
		}
	}

	scripts := scripting.NewManager(logger)
	defer scripts.Close()
	if cfg.Game.Scripts != "" {
		if err := scripts.LoadDir(cfg.Game.Scripts, cfg.Game.ScriptInstructionLimit); err != nil {
			logger.Warn("loading scripts", zap.String("dir", cfg.Game.Scripts), zap.Error(err))
		}
	}

	motd := content.DefaultMOTD
	if cfg.Game.MOTD != "" {
		lines, err := content.LoadMOTD(cfg.Game.MOTD)
		if err != nil {
			logger.Warn("loading motd; using the default", zap.Error(err))
		} else {
			motd = lines
		}
	}

	control := &gameserver.Control{Store: store, Delay: cfg.Game.RestartDelay}
	logger.Info("tzmud starting",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("startup", time.Since(start)),
	)

	for gen := 1; ; gen++ {
		glog := logger.With(observability.Generation(gen))
		outcome, err := runGeneration(ctx, cfg, store, scripts, control, motd, glog)
		if err != nil {
			logger.Fatal("server generation failed", zap.Error(err))
		}
		if err := control.Between(ctx); err != nil {
			glog.Error("between generations", zap.Error(err))
		}
		if outcome != server.Restart {
			logger.Info("tzmud stopped", zap.Duration("uptime", time.Since(start)))
			return
		}
		glog.Info("restarting")
	}
}

// openStore opens the configured backend and returns a closer for it.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Backend, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if _, err := postgres.Migrate(cfg.Database.DSN()); err != nil {
			return nil, nil, err
		}
		s, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s, logger), nil
	default:
		s, err := bolt.Open(cfg.Bolt, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s, logger), nil
	}
}

func closer(s storage.Backend, logger *zap.Logger) func() {
	return func() {
		if err := s.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}
}

// loadWorld rebuilds the world from the store, seeding an empty store.
func loadWorld(ctx context.Context, cfg config.GameConfig, store storage.Backend, opts world.Options, logger *zap.Logger) (*world.World, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	if len(snap.Records) > 0 {
		w, err := world.Load(snap, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("world loaded", zap.Int("objects", len(snap.Records)))
		return w, nil
	}

	seed := content.Default()
	if cfg.Seed != "" {
		if seed, err = content.LoadSeed(cfg.Seed); err != nil {
			return nil, err
		}
	}
	w := world.New(opts)
	if _, err := content.Build(w, seed); err != nil {
		return nil, fmt.Errorf("building seed world: %w", err)
	}
	if err := w.Commit(); err != nil {
		return nil, fmt.Errorf("committing seed world: %w", err)
	}
	logger.Info("world seeded", zap.String("seed", cfg.Seed), zap.Int("rooms", w.Count(world.KindRoom)))
	return w, nil
}

// runGeneration runs one set of services until shutdown or restart.
func runGeneration(
	ctx context.Context,
	cfg config.Config,
	store storage.Backend,
	scripts *scripting.Manager,
	control *gameserver.Control,
	motd []string,
	logger *zap.Logger,
) (server.Outcome, error) {
	opts := world.Options{
		Logger:      logger,
		Store:       store,
		HomeID:      world.ID(cfg.Game.HomeID),
		ActionDelay: cfg.Game.ActionDelay,
		Scripts:     scripts,
	}
	w, err := loadWorld(ctx, cfg.Game, store, opts, logger)
	if err != nil {
		return server.Shutdown, err
	}
	mobs.BindScripts(scripts, w)

	engine := gameserver.NewEngine(w, cfg.Game.TimeScale, logger)
	sessions := session.NewManager()
	dispatcher := gameserver.NewDispatcher(command.DefaultRegistry(), control, cfg.Game.Debug, logger)
	handler := gameserver.NewHandler(engine, sessions, dispatcher, gameserver.SessionConfig{
		Output: gameserver.Output{Width: cfg.Game.WrapWidth, ANSI: cfg.Game.ANSIDefault},
		Admins: cfg.Game.Admins,
	}, motd, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

	lifecycle := server.NewLifecycle(logger)
	// The engine stops last, after every session has logged out through it.
	lifecycle.Add("engine", engine)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn: func() {
			sessions.Broadcast("The server is going down. Goodbye.")
			acceptor.Stop()
		},
	})
	if cfg.Health.Enabled {
		lifecycle.Add("health", server.NewHealthService(cfg.Health.Addr(), logger))
	}
	control.Bind(lifecycle.Request)
	defer control.Bind(nil)

	outcome, err := lifecycle.Run(ctx)
	if errors.Is(err, gameserver.ErrStopped) {
		err = nil
	}
	return outcome, err
}
