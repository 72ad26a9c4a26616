package dal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellouser/internal/store"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/dal"
)

func TestAllAdaptersRegistered(t *testing.T) {
	require.Subset(t, store.ListAdapters(), []string{"memory", "mysql", "postgres", "redis", "sqlite"})
}
