package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/tzmud/internal/config"
	"github.com/cory-johannsen/tzmud/internal/storage/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresCreds = "tzmud"
)

// Postgres is a throwaway PostgreSQL server for one test.
type Postgres struct {
	Config config.DatabaseConfig
	// DB is a pool the test may share between stores.
	DB *pgxpool.Pool
}

// NewPostgres starts a PostgreSQL container and connects a pool to it.
// The container and pool are released when the test ends.
//
// Precondition: Docker is reachable. Without it, and under -short, the test
// is skipped rather than failed.
func NewPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	ctx := context.Background()
	start := time.Now()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresCreds,
				"POSTGRES_PASSWORD": postgresCreds,
				"POSTGRES_DB":       postgresCreds,
			},
			// The server logs readiness once for the init run and once for real.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	pg := &Postgres{Config: config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            postgresCreds,
		Password:        postgresCreds,
		Name:            postgresCreds,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}}
	pg.DB, err = pgxpool.New(ctx, pg.DSN())
	if err != nil {
		t.Fatalf("connecting to %s: %v", pg.DSN(), err)
	}
	t.Cleanup(pg.DB.Close)

	t.Logf("postgres ready at %s:%d [%s]", host, port.Int(), time.Since(start))
	return pg
}

// DSN is the connection URL of the test database.
func (pg *Postgres) DSN() string { return pg.Config.DSN() }

// Migrate applies the embedded schema.
func (pg *Postgres) Migrate(t *testing.T) {
	t.Helper()
	if _, err := postgres.Migrate(pg.DSN()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
}

// Truncate empties every object store table, backups included.
func (pg *Postgres) Truncate(t *testing.T) {
	t.Helper()
	const q = `TRUNCATE objects, meta, backups, backup_objects, backup_meta`
	if _, err := pg.DB.Exec(context.Background(), q); err != nil {
		t.Fatalf("truncating: %v", err)
	}
}
