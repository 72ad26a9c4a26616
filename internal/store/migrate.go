package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Las migraciones SQL se embeben en el binario (ver migrations/).
// Formato de archivo: {version}_{name}.sql (ej: 0001_users.sql).
// Las sentencias de un archivo se separan con ";" al final de línea.

// Dialectos soportados por el Migrator.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// Migrator aplica migraciones SQL a una base de datos.
type Migrator struct {
	fsys    fs.FS
	dir     string
	dialect string
}

// NewMigrator crea un Migrator para el dialecto dado.
func NewMigrator(fsys fs.FS, dir, dialect string) *Migrator {
	return &Migrator{fsys: fsys, dir: dir, dialect: dialect}
}

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Statements separa el SQL de la migración en sentencias individuales.
func (m Migration) Statements() []string {
	var out []string
	for _, part := range strings.Split(m.SQL, ";\n") {
		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if stmt == "" || isComment(stmt) {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func isComment(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// MigrationResult resultado de aplicar migraciones.
type MigrationResult struct {
	Applied  []int
	Skipped  []int
	Failed   *int
	Duration time.Duration
}

var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// ParseMigrations lee y ordena por versión las migraciones del FS.
func (m *Migrator) ParseMigrations() ([]Migration, error) {
	var migrations []Migration
	seen := make(map[int]string)

	err := fs.WalkDir(m.fsys, m.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := migrationFilePattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil // Ignorar archivos que no coinciden
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("migration %s: bad version: %w", p, err)
		}
		if prev, dup := seen[version]; dup {
			return fmt.Errorf("migration version %d duplicated (%s, %s)", version, prev, p)
		}
		seen[version] = p

		content, err := fs.ReadFile(m.fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		migrations = append(migrations, Migration{Version: version, Name: matches[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// SQLExecutor abstrae *sql.DB (pgx se adapta con stdlib.OpenDBFromPool).
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Run aplica las migraciones pendientes.
func (m *Migrator) Run(ctx context.Context, exec SQLExecutor) (*MigrationResult, error) {
	start := time.Now()
	result := &MigrationResult{}
	fail := func(err error) (*MigrationResult, error) {
		result.Duration = time.Since(start)
		return result, err
	}

	if err := m.ensureMigrationsTable(ctx, exec); err != nil {
		return fail(fmt.Errorf("creating migrations table: %w", err))
	}

	applied, err := m.appliedVersions(ctx, exec)
	if err != nil {
		return fail(fmt.Errorf("getting applied migrations: %w", err))
	}

	migrations, err := m.ParseMigrations()
	if err != nil {
		return fail(fmt.Errorf("parsing migrations: %w", err))
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			result.Skipped = append(result.Skipped, mig.Version)
			continue
		}
		if err := m.apply(ctx, exec, mig); err != nil {
			v := mig.Version
			result.Failed = &v
			return fail(fmt.Errorf("applying migration %d_%s: %w", mig.Version, mig.Name, err))
		}
		result.Applied = append(result.Applied, mig.Version)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// HasPending verifica si hay migraciones sin aplicar.
func (m *Migrator) HasPending(ctx context.Context, exec SQLExecutor) (bool, error) {
	if err := m.ensureMigrationsTable(ctx, exec); err != nil {
		return false, err
	}
	applied, err := m.appliedVersions(ctx, exec)
	if err != nil {
		return false, err
	}
	migrations, err := m.ParseMigrations()
	if err != nil {
		return false, err
	}
	for _, mig := range migrations {
		if !applied[mig.Version] {
			return true, nil
		}
	}
	return false, nil
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context, exec SQLExecutor) error {
	var createSQL string
	switch m.dialect {
	case DialectPostgres:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _migrations (
				version INT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				applied_at TIMESTAMPTZ DEFAULT NOW()
			)`
	case DialectMySQL:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _migrations (
				version INT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`
	default:
		createSQL = `
			CREATE TABLE IF NOT EXISTS _migrations (
				version INT PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`
	}
	_, err := exec.ExecContext(ctx, createSQL)
	return err
}

func (m *Migrator) appliedVersions(ctx context.Context, exec SQLExecutor) (map[int]bool, error) {
	rows, err := exec.QueryContext(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, exec SQLExecutor, mig Migration) error {
	for _, stmt := range mig.Statements() {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	insert := "INSERT INTO _migrations (version, name) VALUES (?, ?)"
	if m.dialect == DialectPostgres {
		insert = "INSERT INTO _migrations (version, name) VALUES ($1, $2)"
	}
	_, err := exec.ExecContext(ctx, insert, mig.Version, mig.Name)
	return err
}
