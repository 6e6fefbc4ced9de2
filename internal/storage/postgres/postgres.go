// Package postgres is the PostgreSQL object store. Objects live in one
// table keyed by id; backups are named copies of it.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/config"
)

const (
	applicationName = "tzmud"
	pingTimeout     = 5 * time.Second
)

// Open connects a pool for cfg and returns a Store that owns it.
//
// Precondition: the schema is migrated (see Migrate).
// Postcondition: the database answered a ping, or a non-nil error is
// returned and nothing is left open.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolCfg.AfterConnect = func(_ context.Context, c *pgx.Conn) error {
		logger.Debug("database connection opened", zap.Uint32("pid", c.PgConn().PID()))
		return nil
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	s := NewStore(db, logger)
	s.owned = true
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("postgres store open",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return s, nil
}

// Ping checks the database answers within a few seconds.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}
