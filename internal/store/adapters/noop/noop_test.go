package noop

import (
	"context"
	"testing"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/store"
)

func TestNoopFailsWithNoDatabase(t *testing.T) {
	conn, err := New().Connect(context.Background(), store.AdapterConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !repository.IsNoDatabase(conn.Ping(context.Background())) {
		t.Fatal("ping must report no database")
	}
	if _, err := conn.BeginTx(context.Background()); !repository.IsNoDatabase(err) {
		t.Fatalf("begin: %v", err)
	}
	if _, err := conn.Users().GetUser(context.Background(), "x"); !repository.IsNoDatabase(err) {
		t.Fatalf("get: %v", err)
	}
	if _, ok := store.GetAdapter("noop"); ok {
		t.Fatal("noop must not self-register")
	}
}
