package userrepo_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/persistence"
	"github.com/dropDatabas3/hellouser/internal/persistence/userrepo"
	"github.com/dropDatabas3/hellouser/internal/store"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/sqlite"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func openSQLite(t *testing.T) store.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_, err = conn.(store.Migratable).Migrate(ctx)
	require.NoError(t, err)
	return conn
}

func backends(t *testing.T) map[string]store.Connection {
	return map[string]store.Connection{
		"memory": memory.New(),
		"sqlite": openSQLite(t),
	}
}

func TestInsertThenUpdateSameIdentity(t *testing.T) {
	for name, conn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clk := &clock{now: t0}
			sess := userrepo.NewFactory(conn, clk.Now).Open()

			u1, err := user.Register("Ada Lovelace", "ada@example.com", t0)
			require.NoError(t, err)

			err = sess.UoW.Do(ctx, func(ctx context.Context, w *userrepo.Writes) error {
				_, err := w.Save(u1)
				require.NoError(t, err)
				require.NoError(t, w.Flush(ctx))

				_, err = conn.Users().GetUser(ctx, u1.ID().String())
				assert.True(t, errors.Is(err, repository.ErrNotFound), "flushed but uncommitted rows stay invisible outside the tx")

				clk.now = t0.Add(time.Minute)
				u2, err := u1.Rename("Ada King", t0)
				require.NoError(t, err)
				_, err = w.Save(u2)
				require.NoError(t, err)
				return w.Flush(ctx)
			})
			require.NoError(t, err)

			rec, err := conn.Users().GetUser(ctx, u1.ID().String())
			require.NoError(t, err)
			assert.Equal(t, "Ada King", rec.Name)
			assert.True(t, rec.CreatedAt.Equal(t0), "created_at must not change")
			assert.True(t, rec.UpdatedAt.After(rec.CreatedAt), "updated_at must advance")

			byEmail, err := conn.Users().GetUserByEmail(ctx, "ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, u1.ID().String(), byEmail.ID)
		})
	}
}

func TestFreshInsertHasEqualTimestamps(t *testing.T) {
	for name, conn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := userrepo.NewFactory(conn, func() time.Time { return t0.Add(time.Hour) }).Open()
			u, err := user.Register("Grace Hopper", "grace@example.com", t0)
			require.NoError(t, err)

			require.NoError(t, sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				_, err := w.Save(u)
				return err
			}))

			rec, err := conn.Users().GetUser(ctx, u.ID().String())
			require.NoError(t, err)
			assert.True(t, rec.CreatedAt.Equal(t0))
			assert.True(t, rec.UpdatedAt.Equal(rec.CreatedAt))
		})
	}
}

func TestSequentialScopesReloadFromStore(t *testing.T) {
	for name, conn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := userrepo.NewFactory(conn, func() time.Time { return t0.Add(time.Minute) })
			sess := f.Open()

			u, err := user.Register("Alan Turing", "alan@example.com", t0)
			require.NoError(t, err)
			require.NoError(t, sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				_, err := w.Save(u)
				return err
			}))
			assert.Equal(t, 0, sess.IdentityMap.Len())

			// otra sesión modifica el registro por detrás
			other := f.Open()
			require.NoError(t, other.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				cur, err := w.FindByID(ctx, u.ID())
				if err != nil {
					return err
				}
				renamed, err := cur.Rename("Alan M. Turing", t0.Add(time.Second))
				if err != nil {
					return err
				}
				_, err = w.Save(renamed)
				return err
			}))

			require.NoError(t, sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				got, err := w.FindByID(ctx, u.ID())
				require.NoError(t, err)
				assert.Equal(t, "Alan M. Turing", got.Name().String())
				return nil
			}))
		})
	}
}

func TestFlushConflictRollsBackWholeScope(t *testing.T) {
	for name, conn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := userrepo.NewFactory(conn, nil)

			taken, err := user.Register("First Owner", "taken@example.com", t0)
			require.NoError(t, err)
			require.NoError(t, f.NewSession().Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				_, err := w.Save(taken)
				return err
			}))

			fresh, err := user.Register("Fresh User", "fresh@example.com", t0)
			require.NoError(t, err)
			dup, err := user.Register("Second Owner", "taken@example.com", t0)
			require.NoError(t, err)

			sess := f.Open()
			err = sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
				if _, err := w.Save(fresh); err != nil {
					return err
				}
				_, err := w.Save(dup)
				return err
			})
			require.Error(t, err)
			assert.True(t, repository.IsConflict(err), "got %v", err)
			assert.True(t, repository.IsPersistence(err), "got %v", err)
			assert.Equal(t, persistence.StateClosed, sess.UoW.State())
			assert.Equal(t, 0, sess.IdentityMap.Len())

			_, err = conn.Users().GetUser(ctx, fresh.ID().String())
			assert.True(t, repository.IsNotFound(err), "nothing from a failed flush may be committed")
		})
	}
}

func TestReaderUsesIdentityMapFirst(t *testing.T) {
	conn := memory.New()
	ctx := context.Background()
	sess := userrepo.NewFactory(conn, nil).Open()
	u, err := user.Register("Barbara Liskov", "barbara@example.com", t0)
	require.NoError(t, err)

	require.NoError(t, sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
		if _, err := w.Save(u); err != nil {
			return err
		}
		got, err := sess.Reader().FindBySecondaryKey(ctx, u.Email())
		require.NoError(t, err)
		assert.True(t, got.SameIdentity(u))

		ok, err := sess.Reader().ExistsBySecondaryKey(ctx, u.Email())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, conn.Len(), "nothing reaches the store before flush")
		return nil
	}))
	assert.Equal(t, 1, conn.Len())
}

func TestMapperRejectsCorruptRecord(t *testing.T) {
	m := userrepo.Mapper{}
	_, err := m.ToEntity(store.UserRecord{
		ID:        user.NewID().String(),
		Name:      "x",
		Email:     "ok@example.com",
		CreatedAt: t0,
		UpdatedAt: t0,
	})
	var ve *user.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}
