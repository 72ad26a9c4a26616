package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/config"
	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/services/users"
)

func TestNewMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = true

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, "memory", c.Store.Name())

	res, err := c.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Applied)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewSQLiteMigratesOnStart(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "users.db")
	cfg.Flags.Migrate = true

	ctx := context.Background()
	c, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	out, err := c.Users.Create(ctx, users.CreateInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	got, err := c.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
}

func TestNoneDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "none"

	ctx := context.Background()
	c, err := New(ctx, cfg)
	require.NoError(t, err)

	_, err = c.Users.Create(ctx, users.CreateInput{Name: "Ada", Email: "ada@example.com"})
	assert.True(t, repository.IsNoDatabase(err), "got %v", err)

	h := c.Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdapterConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "redis"
	cfg.Storage.Redis.Addr = "localhost:6379"
	cfg.Storage.Redis.DB = 2
	cfg.Storage.Redis.Prefix = "hu:"

	ac := AdapterConfig(cfg)
	assert.Equal(t, "redis", ac.Name)
	assert.Equal(t, "localhost:6379", ac.DSN)
	assert.Equal(t, 2, ac.DB)
	assert.Equal(t, "hu:", ac.KeyPrefix)

	cfg.Storage.Driver = "postgres"
	cfg.Storage.Postgres.DSN = "postgres://x"
	cfg.Storage.Postgres.ConnMaxLifetime = "5m"
	ac = AdapterConfig(cfg)
	assert.Equal(t, "postgres://x", ac.DSN)
	assert.Equal(t, "5m0s", ac.ConnMaxLifetime.String())
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "cassandra"
	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRateLimitedWrites(t *testing.T) {
	cfg := config.Default()
	cfg.Rate.Enabled = true
	cfg.Rate.Max = 1

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Limiter)

	post := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{"name":"Ada","email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c.Handler().ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusCreated, post("ada@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, post("grace@example.com"))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users?email=ada@example.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
