package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAdaptersCommand(t *testing.T) {
	out, err := run(t, "adapters")
	require.NoError(t, err)
	for _, name := range []string{"memory", "mysql", "postgres", "redis", "sqlite"} {
		assert.Contains(t, out, name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "yaml", "adapters")
	assert.ErrorContains(t, err, "invalid format")
}

func TestUsersCommandsOverSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "users.db")
	base := []string{"--driver", "sqlite", "--dsn", db, "--format", "json"}
	with := func(args ...string) []string { return append(append([]string{}, base...), args...) }

	out, err := run(t, with("migrate")...)
	require.NoError(t, err)
	var mig struct {
		Applied []int `json:"applied"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &mig))
	assert.NotEmpty(t, mig.Applied)

	out, err = run(t, with("users", "create", "--name", "ada lovelace", "--email", "ada@example.com")...)
	require.NoError(t, err)
	var created userJSON
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Ada Lovelace", created.DisplayName)

	out, err = run(t, with("users", "get", created.ID)...)
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	out, err = run(t, with("users", "find", "ADA@example.com")...)
	require.NoError(t, err)
	assert.Contains(t, out, created.ID)

	out, err = run(t, with("users", "rename", created.ID, "Ada King")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ada King"`)

	out, err = run(t, with("users", "change-email", created.ID, "king@example.com")...)
	require.NoError(t, err)
	assert.Contains(t, out, "king@example.com")

	_, err = run(t, with("users", "create", "--name", "Other", "--email", "king@example.com")...)
	assert.ErrorContains(t, err, "conflict")

	_, err = run(t, with("users", "get", "not-a-uuid")...)
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := filepath.Join(t.TempDir(), "users.db")
	base := []string{"--driver", "sqlite", "--dsn", db}

	_, err := run(t, append(base, "migrate")...)
	require.NoError(t, err)

	out, err := run(t, append(base, "seed", "--count", "12", "--concurrency", "4")...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "created=12 conflicts=0"), out)

	out, err = run(t, append(base, "seed", "--count", "12", "--concurrency", "3")...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "created=0 conflicts=12"), out)
}

func TestSeedRejectsZeroCount(t *testing.T) {
	_, err := run(t, "seed", "--count", "0")
	assert.Error(t, err)
}
