// Package noop implementa el adapter no-op para modo sin DB.
package noop

import (
	"context"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

// El adapter noop NO se auto-registra porque es un fallback especial.
// Se usa explícitamente cuando storage.driver = "none": el servidor levanta,
// /healthz reporta la falta de DB y toda operación falla con ErrNoDatabase.

type noopAdapter struct{}

// New retorna el adapter noop.
func New() store.Adapter {
	return &noopAdapter{}
}

func (a *noopAdapter) Name() string { return "noop" }

func (a *noopAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	return &noopConnection{}, nil
}

type noopConnection struct{}

func (c *noopConnection) Name() string                   { return "noop" }
func (c *noopConnection) Ping(ctx context.Context) error { return repository.ErrNoDatabase }
func (c *noopConnection) Close() error                   { return nil }

func (c *noopConnection) Users() store.UserQueries { return noopUsers{} }

func (c *noopConnection) BeginTx(ctx context.Context) (store.Tx, error) {
	return nil, repository.ErrNoDatabase
}

type noopUsers struct{}

func (noopUsers) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	return store.UserRecord{}, repository.ErrNoDatabase
}

func (noopUsers) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	return store.UserRecord{}, repository.ErrNoDatabase
}

func (noopUsers) UserExists(ctx context.Context, id string) (bool, error) {
	return false, repository.ErrNoDatabase
}

func (noopUsers) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, repository.ErrNoDatabase
}
