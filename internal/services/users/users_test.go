package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/persistence/userrepo"
	"github.com/dropDatabas3/hellouser/internal/services/users"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/memory"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (users.Service, *memory.Store, *time.Time) {
	t.Helper()
	now := t0
	clock := func() time.Time { return now }
	st := memory.New()
	svc := users.NewService(users.Deps{
		Sessions: userrepo.NewFactory(st, clock),
		Now:      clock,
	})
	return svc, st, &now
}

func TestCreateAndGet(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, users.CreateInput{Name: "ada lovelace", Email: " Ada@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", out.Email)
	assert.Equal(t, "Ada Lovelace", out.DisplayName)
	assert.True(t, out.CreatedAt.Equal(t0))
	assert.Equal(t, 1, st.Len())

	byID, err := svc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Email, byID.Email)

	byEmail, err := svc.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, out.ID, byEmail.ID)
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, users.CreateInput{Name: "First", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, users.CreateInput{Name: "Second", Email: "dup@example.com"})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err))
	assert.Equal(t, 1, st.Len())
}

func TestCreateValidation(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    users.CreateInput
		field string
	}{
		{"bad email", users.CreateInput{Name: "Valid Name", Email: "nope"}, "email"},
		{"short name", users.CreateInput{Name: "x", Email: "ok@example.com"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			var ve *user.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Equal(t, 0, st.Len())
}

func TestGetMissing(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, user.NewID().String())
	assert.True(t, repository.IsNotFound(err))

	_, err = svc.GetByEmail(ctx, "ghost@example.com")
	assert.True(t, repository.IsNotFound(err))

	_, err = svc.GetByID(ctx, "not-a-uuid")
	var ve *user.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRenameAdvancesUpdatedAt(t *testing.T) {
	svc, _, now := newService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, users.CreateInput{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	*now = t0.Add(time.Minute)
	renamed, err := svc.Rename(ctx, out.ID, "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", renamed.Name)
	assert.True(t, renamed.CreatedAt.Equal(out.CreatedAt))
	assert.True(t, renamed.UpdatedAt.After(out.UpdatedAt))

	_, err = svc.Rename(ctx, user.NewID().String(), "Nobody Here")
	assert.True(t, repository.IsNotFound(err))
}

func TestChangeEmail(t *testing.T) {
	svc, _, now := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, users.CreateInput{Name: "Alan", Email: "alan@example.com"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, users.CreateInput{Name: "Barbara", Email: "barbara@example.com"})
	require.NoError(t, err)

	_, err = svc.ChangeEmail(ctx, a.ID, "barbara@example.com")
	assert.True(t, repository.IsConflict(err))

	*now = t0.Add(time.Hour)
	moved, err := svc.ChangeEmail(ctx, a.ID, "turing@example.com")
	require.NoError(t, err)
	assert.Equal(t, "turing@example.com", moved.Email)

	_, err = svc.GetByEmail(ctx, "alan@example.com")
	assert.True(t, repository.IsNotFound(err), "old email must be released")

	same, err := svc.ChangeEmail(ctx, b.ID, "barbara@example.com")
	require.NoError(t, err)
	assert.True(t, same.UpdatedAt.Equal(b.UpdatedAt), "unchanged email keeps updated_at")
}

func strp(s string) *string { return &s }

func TestUpdateIsAllOrNothing(t *testing.T) {
	svc, _, now := newService(t)
	ctx := context.Background()

	ada, err := svc.Create(ctx, users.CreateInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, users.CreateInput{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	*now = t0.Add(time.Minute)
	_, err = svc.Update(ctx, ada.ID, users.UpdateInput{Name: strp("Renamed"), Email: strp("grace@example.com")})
	assert.True(t, repository.IsConflict(err))

	_, err = svc.Update(ctx, ada.ID, users.UpdateInput{Name: strp("x"), Email: strp("countess@example.com")})
	var ve *user.ValidationError
	assert.ErrorAs(t, err, &ve)

	got, err := svc.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name, "a failed update must not persist the rename")
	assert.Equal(t, "ada@example.com", got.Email)
	assert.True(t, got.UpdatedAt.Equal(ada.UpdatedAt))

	_, err = svc.Update(ctx, ada.ID, users.UpdateInput{})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	out, err := svc.Update(ctx, ada.ID, users.UpdateInput{Name: strp("Ada King"), Email: strp("countess@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", out.Name)
	assert.Equal(t, "countess@example.com", out.Email)
	assert.True(t, out.UpdatedAt.After(ada.UpdatedAt))
}
