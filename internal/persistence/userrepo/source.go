package userrepo

import (
	"context"

	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// source adapta store.UserQueries (strings) a identidades estructuradas.
type source struct {
	q store.UserQueries
}

func (s source) Get(ctx context.Context, id user.ID) (store.UserRecord, error) {
	return s.q.GetUser(ctx, id.String())
}

func (s source) GetByKey(ctx context.Context, email user.Email) (store.UserRecord, error) {
	return s.q.GetUserByEmail(ctx, email.String())
}

func (s source) Exists(ctx context.Context, id user.ID) (bool, error) {
	return s.q.UserExists(ctx, id.String())
}

func (s source) ExistsByKey(ctx context.Context, email user.Email) (bool, error) {
	return s.q.UserExistsByEmail(ctx, email.String())
}

// txSource agrega escrituras y fin de transacción.
type txSource struct {
	source
	tx store.Tx
}

func newTxSource(tx store.Tx) *txSource {
	return &txSource{source: source{q: tx}, tx: tx}
}

func (t *txSource) Insert(ctx context.Context, rec store.UserRecord) error {
	return t.tx.InsertUser(ctx, rec)
}

func (t *txSource) Update(ctx context.Context, id user.ID, rec store.UserRecord) error {
	return t.tx.UpdateUser(ctx, id.String(), rec)
}

func (t *txSource) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *txSource) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
