package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/storage"
)

const backupPrefix = "backup-"

// Store is a storage.Backend over the objects and meta tables.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	// owned pools are closed with the store.
	owned bool
}

// NewStore creates a Store over a pool the caller keeps.
//
// Precondition: db must be open and migrated (see Migrate).
func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Load implements storage.Backend.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	rows, err := s.db.Query(ctx, `SELECT id, kind, class, data FROM objects ORDER BY id`)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("querying objects: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[storage.Record])
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("reading objects: %w", err)
	}

	snap := storage.Snapshot{Records: records, Meta: map[string][]byte{}}
	rows, err = s.db.Query(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("querying meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return storage.Snapshot{}, fmt.Errorf("reading meta: %w", err)
		}
		snap.Meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, fmt.Errorf("reading meta: %w", err)
	}
	return snap, nil
}

// Apply implements storage.Backend. The batch is one transaction.
func (s *Store) Apply(ctx context.Context, b storage.Batch) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		if len(b.Delete) > 0 {
			batch.Queue(`DELETE FROM objects WHERE id = ANY($1)`, b.Delete)
		}
		for _, r := range b.Put {
			batch.Queue(
				`INSERT INTO objects (id, kind, class, data)
				 VALUES ($1, $2, $3, COALESCE($4, ''::bytea))
				 ON CONFLICT (id) DO UPDATE
				 SET kind = EXCLUDED.kind, class = EXCLUDED.class, data = EXCLUDED.data`,
				r.ID, r.Kind, r.Class, r.Data,
			)
		}
		for k, v := range b.Meta {
			batch.Queue(
				`INSERT INTO meta (key, value) VALUES ($1, COALESCE($2, ''::bytea))
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
				k, v,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("applying batch: %w", err)
		}
		return nil
	})
}

// Backup implements storage.Backend. Backups are copies of both tables
// keyed by backup name.
func (s *Store) Backup(ctx context.Context) (string, error) {
	var name string
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE backups IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("locking backups: %w", err)
		}
		var seq int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM backups`).Scan(&seq); err != nil {
			return fmt.Errorf("next backup number: %w", err)
		}
		name = fmt.Sprintf("%s%04d", backupPrefix, seq)
		if _, err := tx.Exec(ctx, `INSERT INTO backups (name, seq) VALUES ($1, $2)`, name, seq); err != nil {
			return fmt.Errorf("recording backup: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO backup_objects (backup, id, kind, class, data)
			 SELECT $1, id, kind, class, data FROM objects`, name); err != nil {
			return fmt.Errorf("copying objects: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO backup_meta (backup, key, value)
			 SELECT $1, key, value FROM meta`, name); err != nil {
			return fmt.Errorf("copying meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("backup written", zap.String("backup", name))
	return name, nil
}

// Backups implements storage.Backend.
func (s *Store) Backups(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM backups ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying backups: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("reading backups: %w", err)
	}
	return names, nil
}

// Restore implements storage.Backend.
func (s *Store) Restore(ctx context.Context, name string) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if name == "" {
			err := tx.QueryRow(ctx, `SELECT name FROM backups ORDER BY seq DESC LIMIT 1`).Scan(&name)
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrNoBackup
			}
			if err != nil {
				return fmt.Errorf("finding newest backup: %w", err)
			}
		} else {
			var found bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM backups WHERE name = $1)`, name).Scan(&found); err != nil {
				return fmt.Errorf("finding backup: %w", err)
			}
			if !found {
				return fmt.Errorf("%w: %s", storage.ErrNoBackup, name)
			}
		}
		if err := truncate(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO objects (id, kind, class, data)
			 SELECT id, kind, class, data FROM backup_objects WHERE backup = $1`, name); err != nil {
			return fmt.Errorf("restoring objects: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO meta (key, value)
			 SELECT key, value FROM backup_meta WHERE backup = $1`, name); err != nil {
			return fmt.Errorf("restoring meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("backup restored", zap.String("backup", name))
	return nil
}

// Reset implements storage.Backend. Backups are kept.
func (s *Store) Reset(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return truncate(ctx, tx)
	})
}

func truncate(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM objects`); err != nil {
		return fmt.Errorf("clearing objects: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM meta`); err != nil {
		return fmt.Errorf("clearing meta: %w", err)
	}
	return nil
}

// Close implements storage.Backend. It closes the pool only when Open made it.
func (s *Store) Close() error {
	if s.owned {
		s.db.Close()
	}
	return nil
}
