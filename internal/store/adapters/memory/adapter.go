// Package memory implementa un backing store en proceso sobre go-cache.
//
// El estado comiteado vive en un *cache.Cache sin expiración:
//
//	user:<id>       -> store.UserRecord
//	email:<email>   -> id
//
// Cada transacción escribe en un overlay privado; Commit valida conflictos
// contra el estado comiteado y aplica todo bajo un único lock.
package memory

import (
	"context"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	return New(), nil
}

// Store es una conexión en memoria. El valor cero no es usable; usar New.
type Store struct {
	mu     sync.RWMutex
	c      *gocache.Cache
	closed bool
}

// New crea un store vacío.
func New() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, 0)}
}

func userKey(id string) string     { return "user:" + id }
func emailKey(email string) string { return "email:" + email }

func (s *Store) Name() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("memory: store closed")
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.c.Flush()
	return nil
}

// Len retorna la cantidad de usuarios comiteados.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ItemCount() / 2
}

func (s *Store) Users() store.UserQueries { return committedReader{s: s} }

func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return &tx{s: s, overlay: make(map[string]store.UserRecord)}, nil
}

// lecturas sobre el estado comiteado; el caller sostiene el lock.

func (s *Store) get(id string) (store.UserRecord, bool) {
	v, ok := s.c.Get(userKey(id))
	if !ok {
		return store.UserRecord{}, false
	}
	return v.(store.UserRecord), true
}

func (s *Store) ownerOf(email string) (string, bool) {
	v, ok := s.c.Get(emailKey(email))
	if !ok {
		return "", false
	}
	return v.(string), true
}

type committedReader struct{ s *Store }

func (r committedReader) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.get(id)
	if !ok {
		return store.UserRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (r committedReader) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.ownerOf(email)
	if !ok {
		return store.UserRecord{}, repository.ErrNotFound
	}
	rec, ok := r.s.get(id)
	if !ok {
		return store.UserRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (r committedReader) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetUser(ctx, id)
	return exists(err)
}

func (r committedReader) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.ownerOf(email)
	return ok, nil
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case repository.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
