package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/storage"
	"github.com/cory-johannsen/tzmud/internal/testutil"
)

func TestMemory_Contract(t *testing.T) {
	testutil.BackendContract(t, func(*testing.T) storage.Backend { return storage.NewMemory() })
}

func TestMemory_FailApplyFailsOnce(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()
	boom := errors.New("boom")
	m.FailApply = boom

	b := storage.Batch{Put: []storage.Record{{ID: 1, Kind: "room"}}}
	assert.ErrorIs(t, m.Apply(ctx, b), boom)
	snap, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Records)

	require.NoError(t, m.Apply(ctx, b))
	snap, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
}

func TestBatch_Empty(t *testing.T) {
	assert.True(t, storage.Batch{}.Empty())
	assert.False(t, storage.Batch{Delete: []int64{1}}.Empty())
	assert.False(t, storage.Batch{Meta: map[string][]byte{"k": nil}}.Empty())
}
