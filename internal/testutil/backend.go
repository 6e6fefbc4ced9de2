// Package testutil holds helpers shared by tests: a telnet client, a
// PostgreSQL container and the storage backend contract.
package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/storage"
)

// BackendContract runs the behaviour every storage.Backend must share.
// open must return an empty backend; each subtest gets a fresh one.
func BackendContract(t *testing.T, open func(t *testing.T) storage.Backend) {
	t.Helper()
	ctx := context.Background()

	rec := func(id int64, kind, data string) storage.Record {
		return storage.Record{ID: id, Kind: kind, Class: kind, Data: []byte(data)}
	}

	t.Run("empty", func(t *testing.T) {
		b := open(t)
		snap, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Records)
		assert.Empty(t, snap.Meta)
	})

	t.Run("apply then load", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Apply(ctx, storage.Batch{
			Put:  []storage.Record{rec(2, "item", "rose"), rec(1, "room", "lobby")},
			Meta: map[string][]byte{storage.MetaRoot: []byte("v1")},
		}))
		snap, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []storage.Record{rec(1, "room", "lobby"), rec(2, "item", "rose")}, snap.Records)
		assert.Equal(t, []byte("v1"), snap.Meta[storage.MetaRoot])
	})

	t.Run("put replaces and delete removes", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Apply(ctx, storage.Batch{Put: []storage.Record{rec(1, "room", "lobby"), rec(2, "item", "rose")}}))
		require.NoError(t, b.Apply(ctx, storage.Batch{
			Put:    []storage.Record{rec(1, "room", "hall")},
			Delete: []int64{2, 99},
		}))
		snap, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []storage.Record{rec(1, "room", "hall")}, snap.Records)
	})

	t.Run("backup and restore", func(t *testing.T) {
		b := open(t)
		names, err := b.Backups(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
		assert.True(t, errors.Is(b.Restore(ctx, ""), storage.ErrNoBackup))

		require.NoError(t, b.Apply(ctx, storage.Batch{
			Put:  []storage.Record{rec(1, "room", "lobby")},
			Meta: map[string][]byte{storage.MetaRoot: []byte("v1")},
		}))
		first, err := b.Backup(ctx)
		require.NoError(t, err)
		require.NoError(t, b.Apply(ctx, storage.Batch{
			Put:  []storage.Record{rec(2, "item", "rose")},
			Meta: map[string][]byte{storage.MetaRoot: []byte("v2")},
		}))
		second, err := b.Backup(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		names, err = b.Backups(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{first, second}, names)

		require.NoError(t, b.Apply(ctx, storage.Batch{Delete: []int64{1, 2}}))
		require.NoError(t, b.Restore(ctx, first))
		snap, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []storage.Record{rec(1, "room", "lobby")}, snap.Records)
		assert.Equal(t, []byte("v1"), snap.Meta[storage.MetaRoot])

		require.NoError(t, b.Restore(ctx, ""))
		snap, err = b.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Records, 2, "an empty name restores the newest backup")

		assert.True(t, errors.Is(b.Restore(ctx, "backup-9999"), storage.ErrNoBackup))
	})

	t.Run("reset", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Apply(ctx, storage.Batch{
			Put:  []storage.Record{rec(1, "room", "lobby")},
			Meta: map[string][]byte{storage.MetaRoot: []byte("v1")},
		}))
		_, err := b.Backup(ctx)
		require.NoError(t, err)
		require.NoError(t, b.Reset(ctx))

		snap, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Records)
		assert.Empty(t, snap.Meta)
		names, err := b.Backups(ctx)
		require.NoError(t, err)
		assert.Len(t, names, 1, "reset keeps backups")
	})
}
