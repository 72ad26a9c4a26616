// Package pg implementa el adapter PostgreSQL.
// Usa pgxpool directamente; las migraciones corren sobre database/sql vía
// pgx/v5/stdlib sobre el mismo pool.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	migrations "github.com/dropDatabas3/hellouser/migrations/postgres"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// uniqueViolation es el SQLSTATE 23505.
const uniqueViolation = "23505"

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	// Configurar pool
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Connection es una conexión activa a PostgreSQL.
type Connection struct {
	pool *pgxpool.Pool
}

func (c *Connection) Name() string { return "postgres" }

func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *Connection) Users() store.UserQueries { return &userQueries{q: c.pool} }

func (c *Connection) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	return &userTx{userQueries: userQueries{q: tx}, tx: tx}, nil
}

// Migrate aplica migrations/postgres sobre un *sql.DB que comparte el pool.
func (c *Connection) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	db := stdlib.OpenDBFromPool(c.pool)
	defer db.Close()
	m := store.NewMigrator(migrations.FS, migrations.Dir, store.DialectPostgres)
	return m.Run(ctx, db)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func wrapWrite(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("pg: %s: %w", op, errors.Join(repository.ErrConflict, err))
	}
	return fmt.Errorf("pg: %s: %w", op, err)
}
