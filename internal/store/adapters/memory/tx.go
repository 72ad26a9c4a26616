package memory

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

type tx struct {
	s       *Store
	overlay map[string]store.UserRecord
	order   []string
	inserts map[string]bool
	done    bool
}

func (t *tx) check() error {
	if t.done {
		return fmt.Errorf("memory: transaction already finished")
	}
	return nil
}

func (t *tx) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	if err := t.check(); err != nil {
		return store.UserRecord{}, err
	}
	if rec, ok := t.overlay[id]; ok {
		return rec, nil
	}
	return t.s.Users().GetUser(ctx, id)
}

func (t *tx) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	if err := t.check(); err != nil {
		return store.UserRecord{}, err
	}
	for _, id := range t.order {
		if rec := t.overlay[id]; rec.Email == email {
			return rec, nil
		}
	}
	rec, err := t.s.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return store.UserRecord{}, err
	}
	// el email cambió dentro de esta transacción
	if _, shadowed := t.overlay[rec.ID]; shadowed {
		return store.UserRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (t *tx) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := t.GetUser(ctx, id)
	return exists(err)
}

func (t *tx) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := t.GetUserByEmail(ctx, email)
	return exists(err)
}

func (t *tx) InsertUser(ctx context.Context, rec store.UserRecord) error {
	if err := t.check(); err != nil {
		return err
	}
	if ok, err := t.UserExists(ctx, rec.ID); err != nil || ok {
		return conflictOr(err, "memory: insert user: id %s", rec.ID)
	}
	if ok, err := t.UserExistsByEmail(ctx, rec.Email); err != nil || ok {
		return conflictOr(err, "memory: insert user: email %s", rec.Email)
	}
	t.stage(rec)
	if t.inserts == nil {
		t.inserts = make(map[string]bool)
	}
	t.inserts[rec.ID] = true
	return nil
}

func (t *tx) UpdateUser(ctx context.Context, id string, rec store.UserRecord) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, err := t.GetUser(ctx, id); err != nil {
		return fmt.Errorf("memory: update user: %w", err)
	}
	owner, err := t.GetUserByEmail(ctx, rec.Email)
	switch {
	case err == nil && owner.ID != id:
		return fmt.Errorf("memory: update user: email %s: %w", rec.Email, repository.ErrConflict)
	case err != nil && !repository.IsNotFound(err):
		return err
	}
	rec.ID = id
	t.stage(rec)
	return nil
}

func (t *tx) stage(rec store.UserRecord) {
	if _, ok := t.overlay[rec.ID]; !ok {
		t.order = append(t.order, rec.ID)
	}
	t.overlay[rec.ID] = rec
}

// Commit revalida contra el estado comiteado y aplica el overlay.
func (t *tx) Commit(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.closed {
		return fmt.Errorf("memory: store closed")
	}

	for _, id := range t.order {
		rec := t.overlay[id]
		if _, ok := t.s.get(id); ok && t.inserts[id] {
			return fmt.Errorf("memory: commit: id %s: %w", id, repository.ErrConflict)
		}
		if owner, ok := t.s.ownerOf(rec.Email); ok && owner != id {
			// el dueño actual libera el email en esta misma transacción
			if moved, inTx := t.overlay[owner]; !inTx || moved.Email == rec.Email {
				return fmt.Errorf("memory: commit: email %s: %w", rec.Email, repository.ErrConflict)
			}
		}
	}

	for _, id := range t.order {
		rec := t.overlay[id]
		if prev, ok := t.s.get(id); ok {
			if prev.Email != rec.Email {
				if owner, _ := t.s.ownerOf(prev.Email); owner == id {
					t.s.c.Delete(emailKey(prev.Email))
				}
			}
			if err := t.s.c.Replace(userKey(id), rec, gocache.NoExpiration); err != nil {
				return fmt.Errorf("memory: commit: %w", err)
			}
		} else if err := t.s.c.Add(userKey(id), rec, gocache.NoExpiration); err != nil {
			return fmt.Errorf("memory: commit: %w", err)
		}
		t.s.c.Set(emailKey(rec.Email), id, gocache.NoExpiration)
	}
	t.done = true
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.overlay = nil
	t.order = nil
	return nil
}

func conflictOr(err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	return fmt.Errorf(format+": %w", append(args, repository.ErrConflict)...)
}
