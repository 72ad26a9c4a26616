package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/memory"
	"github.com/dropDatabas3/hellouser/internal/store/storetest"
)

func TestMemoryAdapterRegistered(t *testing.T) {
	a, ok := store.GetAdapter("memory")
	require.True(t, ok)
	require.Equal(t, "memory", a.Name())
}

func TestMemoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Connection {
		s := memory.New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemoryCommitDetectsRace(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	rec := storetest.NewRecord("Ada", time.Now())

	a, err := s.BeginTx(ctx)
	require.NoError(t, err)
	b, err := s.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, a.InsertUser(ctx, rec))
	require.NoError(t, b.InsertUser(ctx, rec))
	require.NoError(t, a.Commit(ctx))
	require.ErrorIs(t, b.Commit(ctx), repository.ErrConflict)
	require.NoError(t, b.Rollback(ctx))
	require.Equal(t, 1, s.Len())
}

func TestMemoryEmailSwapInOneTx(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	x := storetest.NewRecord("Ada", time.Now())
	y := storetest.NewRecord("Grace", time.Now())
	for _, r := range []store.UserRecord{x, y} {
		tx, _ := s.BeginTx(ctx)
		require.NoError(t, tx.InsertUser(ctx, r))
		require.NoError(t, tx.Commit(ctx))
	}

	// x libera su email y y lo toma dentro de la misma transacción
	tx, _ := s.BeginTx(ctx)
	freed := x.Email
	x.Email = "new-" + x.Email
	require.NoError(t, tx.UpdateUser(ctx, x.ID, x))
	y.Email = freed
	require.NoError(t, tx.UpdateUser(ctx, y.ID, y))
	require.NoError(t, tx.Commit(ctx))

	got, err := s.Users().GetUserByEmail(ctx, freed)
	require.NoError(t, err)
	require.Equal(t, y.ID, got.ID)
}

func TestMemoryClosed(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Close())
	require.Error(t, s.Ping(context.Background()))
	_, err := s.BeginTx(context.Background())
	require.Error(t, err)
}
