// Package bolt provides the embedded object store backed by bbolt.
//
// Records live in one bucket per kind, keyed by big-endian id. Meta values
// live in the meta bucket. Backups are whole-file copies in a backup
// directory.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/config"
	"github.com/cory-johannsen/tzmud/internal/storage"
)

var bucketMeta = []byte("meta")

const (
	backupPrefix = "backup-"
	backupExt    = ".db"
	fileMode     = 0o600
	openTimeout  = 5 * time.Second
)

// entry is the stored value of one record.
type entry struct {
	Class string
	Data  []byte
}

// Store is a storage.Backend over a bbolt file.
type Store struct {
	mu        sync.Mutex
	db        *bbolt.DB
	backupDir string
	logger    *zap.Logger
}

// Open opens or creates the database file and its backup directory.
//
// Precondition: cfg.Path and cfg.BackupDir must be non-empty.
// Postcondition: Returns an open Store or a non-nil error.
func Open(cfg config.BoltConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	db, err := bbolt.Open(cfg.Path, fileMode, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating meta bucket: %w", err)
	}
	logger.Info("bolt store opened", zap.String("path", cfg.Path))
	return &Store{db: db, backupDir: cfg.BackupDir, logger: logger}, nil
}

func idKey(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func keyID(k []byte) int64 {
	return int64(binary.BigEndian.Uint64(k))
}

func encode(r storage.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry{Class: r.Class, Data: r.Data}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(v []byte) (entry, error) {
	var e entry
	err := gob.NewDecoder(bytes.NewReader(v)).Decode(&e)
	return e, err
}

// Load implements storage.Backend.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storage.Snapshot{Meta: map[string][]byte{}}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if bytes.Equal(name, bucketMeta) {
				return b.ForEach(func(k, v []byte) error {
					snap.Meta[string(k)] = slices.Clone(v)
					return nil
				})
			}
			kind := string(name)
			return b.ForEach(func(k, v []byte) error {
				e, err := decode(v)
				if err != nil {
					return fmt.Errorf("decoding %s #%d: %w", kind, keyID(k), err)
				}
				snap.Records = append(snap.Records, storage.Record{
					ID: keyID(k), Kind: kind, Class: e.Class, Data: e.Data,
				})
				return nil
			})
		})
	})
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("loading: %w", err)
	}
	storage.SortRecords(snap.Records)
	return snap, nil
}

// Apply implements storage.Backend. The batch is one bbolt transaction.
func (s *Store) Apply(ctx context.Context, b storage.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, id := range b.Delete {
			key := idKey(id)
			err := tx.ForEach(func(name []byte, bk *bbolt.Bucket) error {
				if bytes.Equal(name, bucketMeta) {
					return nil
				}
				return bk.Delete(key)
			})
			if err != nil {
				return fmt.Errorf("deleting #%d: %w", id, err)
			}
		}
		for _, r := range b.Put {
			bk, err := tx.CreateBucketIfNotExists([]byte(r.Kind))
			if err != nil {
				return fmt.Errorf("bucket %s: %w", r.Kind, err)
			}
			v, err := encode(r)
			if err != nil {
				return fmt.Errorf("encoding #%d: %w", r.ID, err)
			}
			if err := bk.Put(idKey(r.ID), v); err != nil {
				return fmt.Errorf("writing #%d: %w", r.ID, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		for k, v := range b.Meta {
			if err := meta.Put([]byte(k), v); err != nil {
				return fmt.Errorf("writing meta %s: %w", k, err)
			}
		}
		return nil
	})
}

// Backup implements storage.Backend.
func (s *Store) Backup(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, err := s.backups()
	if err != nil {
		return "", err
	}
	next := 1
	if len(names) > 0 {
		next = backupNumber(names[len(names)-1]) + 1
	}
	name := fmt.Sprintf("%s%04d", backupPrefix, next)
	path := s.backupPath(name)
	err = s.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(path, fileMode)
	})
	if err != nil {
		return "", fmt.Errorf("writing backup %s: %w", name, err)
	}
	s.logger.Info("backup written", zap.String("backup", name), zap.String("path", path))
	return name, nil
}

// Backups implements storage.Backend.
func (s *Store) Backups(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backups()
}

func (s *Store) backups() ([]string, error) {
	files, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	var names []string
	for _, f := range files {
		n := f.Name()
		if f.IsDir() || !strings.HasPrefix(n, backupPrefix) || !strings.HasSuffix(n, backupExt) {
			continue
		}
		name := strings.TrimSuffix(n, backupExt)
		if backupNumber(name) > 0 {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int { return backupNumber(a) - backupNumber(b) })
	return names, nil
}

// backupNumber is the sequence number of a backup name, or 0.
func backupNumber(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, backupPrefix))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Store) backupPath(name string) string {
	return filepath.Join(s.backupDir, name+backupExt)
}

// Restore implements storage.Backend. The live file is rewritten from the
// backup in one transaction, so a failed restore leaves it untouched.
func (s *Store) Restore(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		names, err := s.backups()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return storage.ErrNoBackup
		}
		name = names[len(names)-1]
	}
	path := s.backupPath(name)
	if backupNumber(name) == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNoBackup, name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", storage.ErrNoBackup, name)
	}
	src, err := bbolt.Open(path, fileMode, &bbolt.Options{ReadOnly: true, Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("opening backup %s: %w", name, err)
	}
	defer src.Close()

	err = src.View(func(from *bbolt.Tx) error {
		return s.db.Update(func(to *bbolt.Tx) error {
			if err := wipe(to); err != nil {
				return err
			}
			return from.ForEach(func(bname []byte, b *bbolt.Bucket) error {
				dst, err := to.CreateBucketIfNotExists(bname)
				if err != nil {
					return err
				}
				return b.ForEach(func(k, v []byte) error {
					return dst.Put(slices.Clone(k), slices.Clone(v))
				})
			})
		})
	})
	if err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	s.logger.Info("backup restored", zap.String("backup", name))
	return nil
}

// Reset implements storage.Backend.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(wipe)
}

// wipe drops every bucket and recreates an empty meta bucket.
func wipe(tx *bbolt.Tx) error {
	var names [][]byte
	err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
		names = append(names, slices.Clone(name))
		return nil
	})
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := tx.DeleteBucket(n); err != nil {
			return fmt.Errorf("dropping bucket %s: %w", n, err)
		}
	}
	_, err = tx.CreateBucket(bucketMeta)
	return err
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
