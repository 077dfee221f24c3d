// Package testdb runs a throwaway PostgreSQL for repository tests.
package testdb

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/SHADOW0715/Hostel-Management-System/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

const image = "postgres:16-alpine"

var (
	shared     *Postgres
	sharedOnce sync.Once
)

type Postgres struct {
	container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts the container on first use and hands the same
// instance to every later caller in the test binary. Callers must not run in
// parallel; reset state with Truncate.
func SetupSharedPostgres(t *testing.T) *Postgres {
	t.Helper()

	sharedOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx, image,
			postgres.WithDatabase("hostel"),
			postgres.WithUsername("hostel"),
			postgres.WithPassword("hostel"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		database, err := db.NewWithDSN(ctx, dsn)
		require.NoError(t, err)

		shared = &Postgres{container: container, DB: database, DSN: dsn}
	})
	require.NotNil(t, shared, "postgres container failed to start earlier")

	return shared
}

// Truncate empties the given tables in one statement.
func (p *Postgres) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	_, err := p.DB.ExecContext(context.Background(), "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	require.NoError(t, err, "truncate %v", tables)
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate(t *testing.T) {
	t.Helper()

	if p.DB != nil {
		_ = p.DB.Close()
	}
	if p.container != nil {
		if err := p.container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	}
}
