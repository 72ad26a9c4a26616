package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// querier es lo común entre *pgxpool.Pool y pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type userQueries struct{ q querier }

const selectUser = `SELECT id::text, name, email, created_at, updated_at FROM users`

func (r *userQueries) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	return r.scanOne(ctx, "get user", selectUser+` WHERE id = $1`, id)
}

func (r *userQueries) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	return r.scanOne(ctx, "get user by email", selectUser+` WHERE email = $1`, email)
}

func (r *userQueries) UserExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("pg: user exists: %w", err)
	}
	return ok, nil
}

func (r *userQueries) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("pg: user exists by email: %w", err)
	}
	return ok, nil
}

func (r *userQueries) scanOne(ctx context.Context, op, query string, arg any) (store.UserRecord, error) {
	var rec store.UserRecord
	err := r.q.QueryRow(ctx, query, arg).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.UserRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("pg: %s: %w", op, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

type userTx struct {
	userQueries
	tx pgx.Tx
}

func (t *userTx) InsertUser(ctx context.Context, rec store.UserRecord) error {
	const q = `INSERT INTO users (id, name, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := t.tx.Exec(ctx, q, rec.ID, rec.Name, rec.Email, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()); err != nil {
		return wrapWrite("insert user", err)
	}
	return nil
}

func (t *userTx) UpdateUser(ctx context.Context, id string, rec store.UserRecord) error {
	const q = `UPDATE users SET name = $2, email = $3, created_at = $4, updated_at = $5 WHERE id = $1`
	tag, err := t.tx.Exec(ctx, q, id, rec.Name, rec.Email, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return wrapWrite("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pg: update user %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (t *userTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return wrapWrite("commit", err)
	}
	return nil
}

func (t *userTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("pg: rollback: %w", err)
	}
	return nil
}
