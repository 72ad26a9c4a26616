package pg_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/store"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/pg"
	"github.com/dropDatabas3/hellouser/internal/store/storetest"
)

func TestPostgresAdapterRegistered(t *testing.T) {
	a, ok := store.GetAdapter("postgres")
	require.True(t, ok)
	require.Equal(t, "postgres", a.Name())

	_, err := a.Connect(context.Background(), store.AdapterConfig{DSN: "postgres://u:p@localhost:5432/db?sslmode=bogus"})
	require.Error(t, err)
}

// Requiere HELLOUSER_TEST_PG_DSN; la tabla users se vacía antes de cada caso.
func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("HELLOUSER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("HELLOUSER_TEST_PG_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Connection {
		ctx := context.Background()
		conn, err := store.OpenAdapter(ctx, store.AdapterConfig{Name: "postgres", DSN: dsn})
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })

		_, err = conn.(store.Migratable).Migrate(ctx)
		require.NoError(t, err)

		pool, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)
		defer pool.Close()
		_, err = pool.Exec(ctx, `TRUNCATE users`)
		require.NoError(t, err)
		return conn
	})
}
