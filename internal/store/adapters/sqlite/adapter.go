// Package sqlite implementa el adapter SQLite (modernc.org/sqlite, sin cgo).
//
// DSN: una ruta de archivo ("data/users.db") o un DSN completo "file:...?...".
// Para rutas simples se agregan busy_timeout, WAL y _txlock=immediate, así
// las transacciones de escritura esperan el lock en vez de fallar con BUSY.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	migrations "github.com/dropDatabas3/hellouser/migrations/sqlite"

	"github.com/dropDatabas3/hellouser/internal/store"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/sqldb"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: empty DSN")
	}
	db, err := sql.Open("sqlite", BuildDSN(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	sqldb.Configure(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return sqldb.New(db, Dialect()), nil
}

// BuildDSN completa una ruta con los pragmas por defecto.
func BuildDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, "?") {
		return dsn
	}
	return "file:" + dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

// Dialect retorna el dialecto SQLite para sqldb.
func Dialect() sqldb.Dialect {
	return sqldb.Dialect{
		Name:              "sqlite",
		Migrator:          store.DialectSQLite,
		Migrations:        migrations.FS,
		MigrationsDir:     migrations.Dir,
		IsUniqueViolation: isUniqueViolation,
		EncodeTime:        sqldb.FormatText,
	}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
