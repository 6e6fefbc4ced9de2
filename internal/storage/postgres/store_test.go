package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tzmud/internal/config"
	"github.com/cory-johannsen/tzmud/internal/storage"
	"github.com/cory-johannsen/tzmud/internal/storage/postgres"
	"github.com/cory-johannsen/tzmud/internal/testutil"
)

func TestStore_Contract(t *testing.T) {
	pg := testutil.NewPostgres(t)
	pg.Migrate(t)

	testutil.BackendContract(t, func(t *testing.T) storage.Backend {
		pg.Truncate(t)
		return postgres.NewStore(pg.DB, zap.NewNop())
	})
}

func TestMigrate_IsIdempotent(t *testing.T) {
	pg := testutil.NewPostgres(t)
	first, err := postgres.Migrate(pg.DSN())
	require.NoError(t, err)
	second, err := postgres.Migrate(pg.DSN())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, uint(2), second)
}

func TestStore_EmptyDataIsStored(t *testing.T) {
	pg := testutil.NewPostgres(t)
	pg.Migrate(t)
	ctx := context.Background()
	s := postgres.NewStore(pg.DB, zap.NewNop())

	require.NoError(t, s.Apply(ctx, storage.Batch{
		Put:  []storage.Record{{ID: 1, Kind: "room", Class: "room"}},
		Meta: map[string][]byte{"empty": nil},
	}))
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Empty(t, snap.Records[0].Data)
	assert.Contains(t, snap.Meta, "empty")
}

func TestOpen_OwnsItsPool(t *testing.T) {
	pg := testutil.NewPostgres(t)
	pg.Migrate(t)
	ctx := context.Background()

	s, err := postgres.Open(ctx, pg.Config, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	_, err = s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(ctx), "a closed pool cannot ping")
}

func TestOpen_BadHost(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	cfg := config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "x", Password: "x", Name: "x", SSLMode: "disable", MaxConns: 1}
	_, err := postgres.Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
