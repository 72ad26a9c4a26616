package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/persistence"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// Mapper traduce entre user.User y store.UserRecord.
type Mapper struct {
	Now persistence.Clock
}

var _ persistence.Mapper[user.ID, user.Email, user.User, store.UserRecord] = Mapper{}

// ToEntity valida cada campo con los value objects del dominio.
func (m Mapper) ToEntity(rec store.UserRecord) (user.User, error) {
	id, err := user.ParseID(rec.ID)
	if err != nil {
		return user.User{}, err
	}
	name, err := user.ParseName(rec.Name)
	if err != nil {
		return user.User{}, err
	}
	email, err := user.ParseEmail(rec.Email)
	if err != nil {
		return user.User{}, err
	}
	return user.Rehydrate(id, name, email, rec.CreatedAt, rec.UpdatedAt)
}

// ToRecord consulta src para decidir insert o update. No escribe.
func (m Mapper) ToRecord(ctx context.Context, src persistence.Source[user.ID, user.Email, store.UserRecord], u user.User) (store.UserRecord, bool, error) {
	rec := store.UserRecord{
		ID:        u.ID().String(),
		Name:      u.Name().String(),
		Email:     u.Email().String(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}

	stored, err := src.Get(ctx, u.ID())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return rec, false, nil
	case err != nil:
		return store.UserRecord{}, false, err
	}

	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = user.Timestamp(persistence.AdvanceUpdatedAt(
		user.Timestamp(stored.UpdatedAt), u.UpdatedAt(), user.Timestamp(m.now()),
	))
	return rec, true, nil
}

func (m Mapper) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
