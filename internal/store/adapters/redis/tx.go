package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

type tx struct {
	reader
	c       *Connection
	overlay map[string]store.UserRecord
	order   []string
	inserts map[string]bool
	done    bool
}

func (t *tx) check() error {
	if t.done {
		return fmt.Errorf("redis: transaction already finished")
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
	return t.reader.GetUser(ctx, id)
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
	rec, err := t.reader.GetUserByEmail(ctx, email)
	if err != nil {
		return store.UserRecord{}, err
	}
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
	ok, err := t.UserExists(ctx, rec.ID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("redis: insert user: id %s: %w", rec.ID, repository.ErrConflict)
	}
	if ok, err = t.UserExistsByEmail(ctx, rec.Email); err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("redis: insert user: email %s: %w", rec.Email, repository.ErrConflict)
	}
	t.stage(rec)
	t.inserts[rec.ID] = true
	return nil
}

func (t *tx) UpdateUser(ctx context.Context, id string, rec store.UserRecord) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, err := t.GetUser(ctx, id); err != nil {
		return fmt.Errorf("redis: update user: %w", err)
	}
	owner, err := t.GetUserByEmail(ctx, rec.Email)
	switch {
	case err == nil && owner.ID != id:
		return fmt.Errorf("redis: update user: email %s: %w", rec.Email, repository.ErrConflict)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
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

// Commit aplica el overlay con WATCH + MULTI/EXEC.
func (t *tx) Commit(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.done = true
	if len(t.order) == 0 {
		return nil
	}

	claimed := make(map[string]bool, len(t.order))
	keys := make([]string, 0, 2*len(t.order))
	for _, id := range t.order {
		rec := t.overlay[id]
		claimed[rec.Email] = true
		keys = append(keys, t.c.userKey(id), t.c.emailKey(rec.Email))
	}

	err := t.c.rdb.Watch(ctx, func(rtx *redis.Tx) error {
		var release []string
		for _, id := range t.order {
			rec := t.overlay[id]
			prev, err := getUser(ctx, rtx, t.c.userKey(id))
			switch {
			case err == nil && t.inserts[id]:
				return fmt.Errorf("redis: commit: id %s: %w", id, repository.ErrConflict)
			case errors.Is(err, repository.ErrNotFound) && !t.inserts[id]:
				return fmt.Errorf("redis: commit: user %s: %w", id, repository.ErrNotFound)
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return err
			}
			if err == nil && prev.Email != rec.Email && !claimed[prev.Email] {
				release = append(release, t.c.emailKey(prev.Email))
			}

			owner, err := rtx.Get(ctx, t.c.emailKey(rec.Email)).Result()
			if err != nil && err != redis.Nil {
				return fmt.Errorf("redis: commit: %w", err)
			}
			if owner != "" && owner != id {
				if moved, inTx := t.overlay[owner]; !inTx || moved.Email == rec.Email {
					return fmt.Errorf("redis: commit: email %s: %w", rec.Email, repository.ErrConflict)
				}
			}
		}

		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, k := range release {
				pipe.Del(ctx, k)
			}
			for _, id := range t.order {
				rec := t.overlay[id]
				pipe.HSet(ctx, t.c.userKey(id), encode(rec)...)
				pipe.Set(ctx, t.c.emailKey(rec.Email), id, 0)
			}
			return nil
		})
		return err
	}, keys...)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("redis: commit: concurrent modification: %w", repository.ErrConflict)
	}
	return err
}

// Rollback descarta el overlay; no hay nada que deshacer en el servidor.
func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.overlay = nil
	t.order = nil
	return nil
}
