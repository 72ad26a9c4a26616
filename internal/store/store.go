// Package store define el contrato del backing store y el registry de adaptadores.
//
// Los adaptadores (internal/store/adapters/...) se registran en init() y se
// abren por nombre con OpenAdapter. Todos trabajan con identidades y emails
// como strings; la traducción a tipos de dominio la hace persistence/userrepo.
package store

import (
	"context"
	"time"
)

// UserRecord es la representación de almacenamiento de un usuario.
// Tabla users: id, name, email (único), created_at, updated_at.
type UserRecord struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserQueries lecturas sobre usuarios.
type UserQueries interface {
	// GetUser retorna repository.ErrNotFound si no existe.
	GetUser(ctx context.Context, id string) (UserRecord, error)

	// GetUserByEmail retorna repository.ErrNotFound si no existe.
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)

	UserExists(ctx context.Context, id string) (bool, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserWrites escrituras; solo disponibles dentro de una transacción.
type UserWrites interface {
	// InsertUser retorna repository.ErrConflict si el id o el email ya existen.
	InsertUser(ctx context.Context, rec UserRecord) error

	// UpdateUser retorna repository.ErrNotFound si no existe y
	// repository.ErrConflict si el nuevo email pertenece a otro usuario.
	UpdateUser(ctx context.Context, id string, rec UserRecord) error
}

// Tx es una transacción abierta. Rollback después de Commit (o de otro
// Rollback) es un no-op.
type Tx interface {
	UserQueries
	UserWrites
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection es una conexión activa a un backing store.
type Connection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	// Users lee fuera de cualquier transacción.
	Users() UserQueries

	BeginTx(ctx context.Context) (Tx, error)
}

// Migratable interfaz opcional para conexiones con esquema (postgres, mysql, sqlite).
type Migratable interface {
	Migrate(ctx context.Context) (*MigrationResult, error)
}
