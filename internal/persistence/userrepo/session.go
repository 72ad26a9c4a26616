// Package userrepo conecta la capa genérica de persistencia con User y con
// un store.Connection.
package userrepo

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/persistence"
	"github.com/dropDatabas3/hellouser/internal/store"
)

type (
	IdentityMap = persistence.IdentityMap[user.ID, user.Email, user.User]
	Reads       = persistence.ReadRepository[user.ID, user.Email, user.User, store.UserRecord]
	Writes      = persistence.WriteRepository[user.ID, user.Email, user.User, store.UserRecord]
	UnitOfWork  = persistence.UnitOfWork[*Writes]
)

// Session es el conjunto por operación: un identity map compartido por las
// lecturas y la unidad de trabajo.
type Session struct {
	IdentityMap *IdentityMap
	Reads       *Reads
	UoW         *UnitOfWork
}

var _ repository.UserSession = (*Session)(nil)

// Factory crea sesiones sobre una conexión.
type Factory struct {
	conn store.Connection
	now  func() time.Time
}

var _ repository.UserSessionFactory = (*Factory)(nil)

// NewFactory crea un Factory. now puede ser nil (time.Now).
func NewFactory(conn store.Connection, now func() time.Time) *Factory {
	return &Factory{conn: conn, now: now}
}

// Open crea una sesión con tipos concretos.
func (f *Factory) Open() *Session {
	im := persistence.NewIdentityMap[user.ID, user.Email, user.User]()
	mapper := Mapper{Now: f.now}

	bind := func(ctx context.Context) (persistence.Transaction, *Writes, error) {
		tx, err := f.conn.BeginTx(ctx)
		if err != nil {
			return nil, nil, err
		}
		src := newTxSource(tx)
		return src, persistence.NewWriteRepository[user.ID, user.Email, user.User, store.UserRecord](im, src, mapper), nil
	}

	return &Session{
		IdentityMap: im,
		Reads:       persistence.NewReadRepository[user.ID, user.Email, user.User, store.UserRecord](im, source{q: f.conn.Users()}, mapper),
		UoW:         persistence.NewUnitOfWork[*Writes]("users", bind),
	}
}

// NewSession implementa repository.UserSessionFactory.
func (f *Factory) NewSession() repository.UserSession {
	return f.Open()
}

func (s *Session) Reader() repository.UserReader { return s.Reads }

// Do abre una unidad de trabajo exponiendo el repositorio de escritura como puerto.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, w repository.UserWriter) error) error {
	return s.UoW.Do(ctx, func(ctx context.Context, w *Writes) error {
		return fn(ctx, w)
	})
}
