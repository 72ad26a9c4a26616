// Package mysql implementa el adapter MySQL.
// Usa database/sql con github.com/go-sql-driver/mysql.
//
// Requisitos:
//   - MySQL 8.0+
//   - DSN format: user:password@tcp(host:port)/database
//     (parseTime=true y loc=UTC se agregan si faltan)
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	migrations "github.com/dropDatabas3/hellouser/migrations/mysql"

	"github.com/dropDatabas3/hellouser/internal/store"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/sqldb"
)

// errDupEntry es ER_DUP_ENTRY.
const errDupEntry = 1062

func init() {
	store.RegisterAdapter(&mysqlAdapter{})
}

// mysqlAdapter implementa store.Adapter para MySQL.
type mysqlAdapter struct{}

func (a *mysqlAdapter) Name() string { return "mysql" }

func (a *mysqlAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	sqldb.Configure(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping failed: %w", err)
	}
	return sqldb.New(db, Dialect()), nil
}

// NormalizeDSN valida el DSN y fuerza parseTime=true y loc=UTC, necesarios
// para que DATETIME(6) vuelva como time.Time en UTC.
func NormalizeDSN(dsn string) (string, error) {
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("mysql: empty DSN")
	}
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: parse DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Dialect retorna el dialecto MySQL para sqldb.
func Dialect() sqldb.Dialect {
	return sqldb.Dialect{
		Name:              "mysql",
		Migrator:          store.DialectMySQL,
		Migrations:        migrations.FS,
		MigrationsDir:     migrations.Dir,
		IsUniqueViolation: isUniqueViolation,
	}
}

func isUniqueViolation(err error) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
