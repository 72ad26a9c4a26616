// Package storetest contiene la batería de conformidad que todo adapter de
// store.Connection debe pasar.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// NewRecord arma un registro válido con email único.
func NewRecord(name string, at time.Time) store.UserRecord {
	id := uuid.NewString()
	ts := at.UTC().Truncate(time.Microsecond)
	return store.UserRecord{
		ID:        id,
		Name:      name,
		Email:     id[:8] + "@example.com",
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Run ejecuta la batería completa. open debe devolver una conexión limpia.
func Run(t *testing.T, open func(t *testing.T) store.Connection) {
	t.Run("InsertVisibleOnlyAfterCommit", func(t *testing.T) { insertVisibleAfterCommit(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { notFound(t, open(t)) })
	t.Run("Conflicts", func(t *testing.T) { conflicts(t, open(t)) })
	t.Run("UpdateMovesEmail", func(t *testing.T) { updateMovesEmail(t, open(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { updateMissing(t, open(t)) })
	t.Run("RollbackDiscards", func(t *testing.T) { rollbackDiscards(t, open(t)) })
	t.Run("TxReadsOwnWrites", func(t *testing.T) { txReadsOwnWrites(t, open(t)) })
}

func begin(t *testing.T, c store.Connection) store.Tx {
	t.Helper()
	tx, err := c.BeginTx(context.Background())
	require.NoError(t, err)
	return tx
}

func commitInsert(t *testing.T, c store.Connection, rec store.UserRecord) {
	t.Helper()
	ctx := context.Background()
	tx := begin(t, c)
	require.NoError(t, tx.InsertUser(ctx, rec))
	require.NoError(t, tx.Commit(ctx))
}

func insertVisibleAfterCommit(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())

	tx := begin(t, c)
	require.NoError(t, tx.InsertUser(ctx, rec))
	ok, err := c.Users().UserExists(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, ok, "uncommitted insert must not be visible outside the tx")
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx), "rollback after commit is a no-op")

	got, err := c.Users().GetUser(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, rec.Email, got.Email)
	require.True(t, rec.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", rec.CreatedAt, got.CreatedAt)
	require.True(t, rec.UpdatedAt.Equal(got.UpdatedAt))

	byEmail, err := c.Users().GetUserByEmail(ctx, rec.Email)
	require.NoError(t, err)
	require.Equal(t, rec.ID, byEmail.ID)

	ok, err = c.Users().UserExistsByEmail(ctx, rec.Email)
	require.NoError(t, err)
	require.True(t, ok)
}

func notFound(t *testing.T, c store.Connection) {
	ctx := context.Background()
	_, err := c.Users().GetUser(ctx, uuid.NewString())
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = c.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
	ok, err := c.Users().UserExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func conflicts(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())
	commitInsert(t, c, rec)

	dupID := NewRecord("Grace", time.Now())
	dupID.ID = rec.ID
	tx := begin(t, c)
	err := tx.InsertUser(ctx, dupID)
	if err == nil {
		err = tx.Commit(ctx)
	}
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, tx.Rollback(ctx))

	dupEmail := NewRecord("Grace", time.Now())
	dupEmail.Email = rec.Email
	tx = begin(t, c)
	err = tx.InsertUser(ctx, dupEmail)
	if err == nil {
		err = tx.Commit(ctx)
	}
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, tx.Rollback(ctx))
}

func updateMovesEmail(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())
	commitInsert(t, c, rec)

	next := rec
	next.Name = "Ada L."
	next.Email = "moved-" + rec.Email
	next.UpdatedAt = rec.UpdatedAt.Add(time.Second)

	tx := begin(t, c)
	require.NoError(t, tx.UpdateUser(ctx, rec.ID, next))
	require.NoError(t, tx.Commit(ctx))

	got, err := c.Users().GetUser(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada L.", got.Name)
	require.True(t, got.CreatedAt.Equal(rec.CreatedAt))
	require.True(t, got.UpdatedAt.Equal(next.UpdatedAt))

	_, err = c.Users().GetUserByEmail(ctx, rec.Email)
	require.ErrorIs(t, err, repository.ErrNotFound)
	moved, err := c.Users().GetUserByEmail(ctx, next.Email)
	require.NoError(t, err)
	require.Equal(t, rec.ID, moved.ID)
}

func updateMissing(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())
	tx := begin(t, c)
	defer tx.Rollback(ctx)
	require.ErrorIs(t, tx.UpdateUser(ctx, rec.ID, rec), repository.ErrNotFound)
}

func rollbackDiscards(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())
	tx := begin(t, c)
	require.NoError(t, tx.InsertUser(ctx, rec))
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx))

	ok, err := c.Users().UserExists(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func txReadsOwnWrites(t *testing.T, c store.Connection) {
	ctx := context.Background()
	rec := NewRecord("Ada", time.Now())
	tx := begin(t, c)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.InsertUser(ctx, rec))
	got, err := tx.GetUser(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Email, got.Email)
	ok, err := tx.UserExistsByEmail(ctx, rec.Email)
	require.NoError(t, err)
	require.True(t, ok)
}
