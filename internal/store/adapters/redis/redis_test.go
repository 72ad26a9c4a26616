package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/store"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/redis"
	"github.com/dropDatabas3/hellouser/internal/store/storetest"
)

func TestRedisAdapterRegistered(t *testing.T) {
	a, ok := store.GetAdapter("redis")
	require.True(t, ok)
	require.Equal(t, "redis", a.Name())

	_, err := a.Connect(context.Background(), store.AdapterConfig{})
	require.Error(t, err)
}

// Requiere HELLOUSER_TEST_REDIS_ADDR; cada caso usa un prefijo propio.
func TestRedisConformance(t *testing.T) {
	addr := os.Getenv("HELLOUSER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HELLOUSER_TEST_REDIS_ADDR not set")
	}
	storetest.Run(t, func(t *testing.T) store.Connection {
		conn, err := store.OpenAdapter(context.Background(), store.AdapterConfig{
			Name:      "redis",
			DSN:       addr,
			KeyPrefix: "hellouser-test-" + uuid.NewString()[:8],
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	})
}
