// Package storage defines the object store contract the world commits into.
//
// A backend persists opaque encoded object records grouped by kind, plus a
// small set of named meta values. Every Apply is atomic: either the whole
// batch is durable or none of it is.
package storage

import (
	"context"
	"errors"
	"sort"
)

// ErrNoBackup is returned when a requested backup does not exist.
var ErrNoBackup = errors.New("no such backup")

// MetaRoot is the meta key of the encoded world header.
const MetaRoot = "root"

// Record is one encoded object.
type Record struct {
	ID    int64
	Kind  string
	Class string
	Data  []byte
}

// Batch is the set of changes made by one committed transaction.
type Batch struct {
	Put    []Record
	Delete []int64
	Meta   map[string][]byte
}

// Empty reports whether the batch changes nothing.
func (b Batch) Empty() bool {
	return len(b.Put) == 0 && len(b.Delete) == 0 && len(b.Meta) == 0
}

// Snapshot is the full content of a store.
type Snapshot struct {
	Records []Record
	Meta    map[string][]byte
}

// Backend is a transactional object store.
type Backend interface {
	// Load reads every record and meta value.
	Load(ctx context.Context) (Snapshot, error)
	// Apply commits a batch atomically.
	Apply(ctx context.Context, b Batch) error
	// Backup copies the current content under a generated name and returns
	// the name.
	Backup(ctx context.Context) (string, error)
	// Backups lists backup names, oldest first.
	Backups(ctx context.Context) ([]string, error)
	// Restore replaces the current content with a backup. An empty name
	// selects the newest backup.
	Restore(ctx context.Context, name string) error
	// Reset removes every record and meta value.
	Reset(ctx context.Context) error
	// Close releases the store.
	Close() error
}

// SortRecords orders records by id.
func SortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}
