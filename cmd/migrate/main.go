// Package main applies, reverts or reports the PostgreSQL object store
// schema. It is only needed with storage.driver set to postgres.
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/config"
	"github.com/cory-johannsen/tzmud/internal/observability"
	"github.com/cory-johannsen/tzmud/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "up, down or version")
	steps := flag.Int("steps", 0, "number of steps for up or down (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Storage.Driver != config.DriverPostgres {
		logger.Fatal("migrations apply only to the postgres driver", zap.String("driver", cfg.Storage.Driver))
	}
	m, err := postgres.NewMigrator(cfg.Storage.Database.DSN())
	if err != nil {
		logger.Fatal("opening migrator", zap.Error(err))
	}
	defer m.Close()

	if err := apply(m, *direction, *steps); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
		}
		logger.Info("schema already current")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal("reading schema version", zap.Error(err))
	}
	logger.Info("schema",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// apply runs one migration request. "version" changes nothing.
func apply(m *migrate.Migrate, direction string, steps int) error {
	switch direction {
	case "up":
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case "down":
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	case "version":
		return nil
	default:
		return errors.New(`direction must be "up", "down" or "version"`)
	}
}
