// Package sqldb implementa store.Connection sobre database/sql. Lo comparten
// los adapters mysql y sqlite; cada uno aporta su Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// Dialect describe las diferencias entre motores.
type Dialect struct {
	// Name del adapter ("mysql", "sqlite").
	Name string

	// Migrator es el dialecto del store.Migrator.
	Migrator string

	// Migrations y MigrationsDir ubican los .sql embebidos.
	Migrations    fs.FS
	MigrationsDir string

	// IsUniqueViolation reconoce errores de clave duplicada del driver.
	IsUniqueViolation func(error) bool

	// EncodeTime convierte un timestamp al valor que acepta la columna.
	// nil = pasar time.Time tal cual.
	EncodeTime func(time.Time) any
}

// Conn es una conexión activa.
type Conn struct {
	db *sql.DB
	d  Dialect
}

// New envuelve un *sql.DB ya abierto.
func New(db *sql.DB, d Dialect) *Conn {
	return &Conn{db: db, d: d}
}

// Configure aplica los settings de pool con los defaults de los adapters.
func Configure(db *sql.DB, cfg store.AdapterConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func (c *Conn) Name() string { return c.d.Name }

func (c *Conn) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *Conn) Close() error { return c.db.Close() }

// DB expone el pool (migraciones, tests).
func (c *Conn) DB() *sql.DB { return c.db }

func (c *Conn) Users() store.UserQueries { return &queries{q: c.db, d: &c.d} }

func (c *Conn) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", c.d.Name, err)
	}
	return &sqlTx{queries: queries{q: tx, d: &c.d}, tx: tx}, nil
}

// Migrate aplica las migraciones embebidas del dialecto.
func (c *Conn) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	m := store.NewMigrator(c.d.Migrations, c.d.MigrationsDir, c.d.Migrator)
	return m.Run(ctx, c.db)
}

// querier es lo común entre *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
	d *Dialect
}

const selectUser = `SELECT id, name, email, created_at, updated_at FROM users`

func (r *queries) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	return r.scanOne(ctx, "get user", selectUser+` WHERE id = ?`, id)
}

func (r *queries) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	return r.scanOne(ctx, "get user by email", selectUser+` WHERE email = ?`, email)
}

func (r *queries) UserExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "user exists", `SELECT 1 FROM users WHERE id = ?`, id)
}

func (r *queries) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "user exists by email", `SELECT 1 FROM users WHERE email = ?`, email)
}

func (r *queries) scanOne(ctx context.Context, op, query string, arg any) (store.UserRecord, error) {
	var rec store.UserRecord
	var created, updated Time
	err := r.q.QueryRowContext(ctx, query, arg).Scan(&rec.ID, &rec.Name, &rec.Email, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("%s: %s: %w", r.d.Name, op, err)
	}
	rec.CreatedAt = created.Time
	rec.UpdatedAt = updated.Time
	return rec, nil
}

func (r *queries) exists(ctx context.Context, op, query string, arg any) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, query+` LIMIT 1`, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %s: %w", r.d.Name, op, err)
	}
	return true, nil
}

func (r *queries) encode(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if r.d.EncodeTime == nil {
		return t
	}
	return r.d.EncodeTime(t)
}

func (r *queries) wrapWrite(op string, err error) error {
	if r.d.IsUniqueViolation != nil && r.d.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %s: %w", r.d.Name, op, errors.Join(repository.ErrConflict, err))
	}
	return fmt.Errorf("%s: %s: %w", r.d.Name, op, err)
}

type sqlTx struct {
	queries
	tx *sql.Tx
}

func (t *sqlTx) InsertUser(ctx context.Context, rec store.UserRecord) error {
	const q = `INSERT INTO users (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := t.q.ExecContext(ctx, q, rec.ID, rec.Name, rec.Email, t.encode(rec.CreatedAt), t.encode(rec.UpdatedAt)); err != nil {
		return t.wrapWrite("insert user", err)
	}
	return nil
}

func (t *sqlTx) UpdateUser(ctx context.Context, id string, rec store.UserRecord) error {
	const q = `UPDATE users SET name = ?, email = ?, created_at = ?, updated_at = ? WHERE id = ?`
	res, err := t.q.ExecContext(ctx, q, rec.Name, rec.Email, t.encode(rec.CreatedAt), t.encode(rec.UpdatedAt), id)
	if err != nil {
		return t.wrapWrite("update user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.wrapWrite("update user", err)
	}
	if n == 0 {
		// MySQL reporta 0 filas si los valores no cambian; confirmar existencia
		ok, err := t.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: update user %s: %w", t.d.Name, id, repository.ErrNotFound)
		}
	}
	return nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return t.wrapWrite("commit", err)
	}
	return nil
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: rollback: %w", t.d.Name, err)
	}
	return nil
}
