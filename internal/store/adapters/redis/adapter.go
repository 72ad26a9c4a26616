// Package redis implementa el adapter Redis.
//
// Layout de claves (con prefijo opcional "<prefix>:"):
//
//	user:<id>            HASH  id, name, email, created_at, updated_at
//	user:email:<email>   STRING id
//
// Las transacciones acumulan escrituras en memoria; Commit usa WATCH sobre
// las claves afectadas y aplica todo con un MULTI/EXEC (TxPipelined). Si otra
// conexión tocó esas claves el commit falla con repository.ErrConflict.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

func init() {
	store.RegisterAdapter(&redisAdapter{})
}

type redisAdapter struct{}

func (a *redisAdapter) Name() string { return "redis" }

// Connect acepta "host:port" o una URL redis://.
func (a *redisAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("redis: empty address")
	}

	var opts *redis.Options
	if strings.HasPrefix(cfg.DSN, "redis://") || strings.HasPrefix(cfg.DSN, "rediss://") {
		var err error
		opts, err = redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("redis: parse URL: %w", err)
		}
	} else {
		opts = &redis.Options{Addr: cfg.DSN, Password: cfg.Password, DB: cfg.DB}
	}
	if cfg.MaxOpenConns > 0 {
		opts.PoolSize = cfg.MaxOpenConns
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return New(rdb, cfg.KeyPrefix), nil
}

// Connection es una conexión activa a Redis.
type Connection struct {
	rdb    *redis.Client
	prefix string
}

// New envuelve un cliente existente.
func New(rdb *redis.Client, prefix string) *Connection {
	return &Connection{rdb: rdb, prefix: prefix}
}

func (c *Connection) Name() string { return "redis" }

func (c *Connection) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Connection) Close() error { return c.rdb.Close() }

func (c *Connection) Users() store.UserQueries { return &reader{c: c} }

func (c *Connection) BeginTx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{c: c, reader: reader{c: c}, overlay: make(map[string]store.UserRecord), inserts: make(map[string]bool)}, nil
}

func (c *Connection) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *Connection) userKey(id string) string     { return c.key("user:" + id) }
func (c *Connection) emailKey(email string) string { return c.key("user:email:" + email) }

// reader lee directamente del servidor.
type reader struct{ c *Connection }

func (r *reader) GetUser(ctx context.Context, id string) (store.UserRecord, error) {
	return getUser(ctx, r.c.rdb, r.c.userKey(id))
}

func (r *reader) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	id, err := r.c.rdb.Get(ctx, r.c.emailKey(email)).Result()
	if err == redis.Nil {
		return store.UserRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("redis: get user by email: %w", err)
	}
	return r.GetUser(ctx, id)
}

func (r *reader) UserExists(ctx context.Context, id string) (bool, error) {
	n, err := r.c.rdb.Exists(ctx, r.c.userKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: user exists: %w", err)
	}
	return n > 0, nil
}

func (r *reader) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.c.rdb.Exists(ctx, r.c.emailKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: user exists by email: %w", err)
	}
	return n > 0, nil
}

// hashGetter lo cumplen *redis.Client y *redis.Tx.
type hashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func getUser(ctx context.Context, cmd hashGetter, key string) (store.UserRecord, error) {
	fields, err := cmd.HGetAll(ctx, key).Result()
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("redis: get user: %w", err)
	}
	if len(fields) == 0 {
		return store.UserRecord{}, repository.ErrNotFound
	}
	return decode(fields)
}

func encode(rec store.UserRecord) []any {
	return []any{
		"id", rec.ID,
		"name", rec.Name,
		"email", rec.Email,
		"created_at", rec.CreatedAt.UTC().Format(timeLayout),
		"updated_at", rec.UpdatedAt.UTC().Format(timeLayout),
	}
}

func decode(f map[string]string) (store.UserRecord, error) {
	created, err := time.Parse(timeLayout, f["created_at"])
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("redis: decode created_at: %w", err)
	}
	updated, err := time.Parse(timeLayout, f["updated_at"])
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("redis: decode updated_at: %w", err)
	}
	return store.UserRecord{
		ID:        f["id"],
		Name:      f["name"],
		Email:     f["email"],
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
