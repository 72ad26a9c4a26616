package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/store"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/sqlite"
	"github.com/dropDatabas3/hellouser/internal/store/storetest"
)

func open(t *testing.T) store.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	m, ok := conn.(store.Migratable)
	require.True(t, ok, "sqlite connection must be migratable")
	res, err := m.Migrate(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, res.Applied)
	return conn
}

func TestSQLiteAdapterRegistered(t *testing.T) {
	a, ok := store.GetAdapter("sqlite")
	require.True(t, ok)
	require.Equal(t, "sqlite", a.Name())

	_, err := a.Connect(context.Background(), store.AdapterConfig{})
	require.Error(t, err, "empty DSN must fail")
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	conn := open(t)
	res, err := conn.(store.Migratable).Migrate(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Applied)
	require.NotEmpty(t, res.Skipped)
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, open)
}
