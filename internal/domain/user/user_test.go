package user

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseEmail(t *testing.T) {
	valids := []string{"ada@example.com", "  Ada.Lovelace+tag@Example.ORG ", "a_b%c@sub.example.io"}
	for _, v := range valids {
		if _, err := ParseEmail(v); err != nil {
			t.Fatalf("expected valid email %q: %v", v, err)
		}
	}

	invalids := []string{"", "   ", "ada", "ada@", "@example.com", "ada@example", "ada@example.c", "ada lovelace@example.com"}
	for _, v := range invalids {
		_, err := ParseEmail(v)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %q, got %v", v, err)
		}
		if ve.Field != "email" {
			t.Fatalf("field = %q", ve.Field)
		}
	}
}

func TestParseEmail_Normalizes(t *testing.T) {
	e, err := ParseEmail("  Ada@Example.COM ")
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "ada@example.com" {
		t.Fatalf("got %q", e.String())
	}
}

func TestParseName_Bounds(t *testing.T) {
	if _, err := ParseName("a"); err == nil {
		t.Fatal("expected too short")
	}
	if _, err := ParseName(strings.Repeat("x", MaxNameLength+1)); err == nil {
		t.Fatal("expected too long")
	}
	if _, err := ParseName(strings.Repeat("ñ", MaxNameLength)); err != nil {
		t.Fatalf("50 runes should be valid: %v", err)
	}
	if _, err := ParseName("  "); err == nil {
		t.Fatal("expected empty")
	}
}

func TestName_DisplayName(t *testing.T) {
	n, err := ParseName("ada lovelace")
	if err != nil {
		t.Fatal(err)
	}
	if got := n.DisplayName(); got != "Ada Lovelace" {
		t.Fatalf("DisplayName = %q", got)
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	got, err := ParseID(id.String())
	if err != nil || got != id {
		t.Fatalf("round trip failed: %v %v", got, err)
	}
	if _, err := ParseID("not-a-uuid"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ParseID("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatal("nil uuid must be rejected")
	}
}

func TestRegister_TimestampsEqual(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	u, err := Register("Ada", "ada@example.com", now)
	if err != nil {
		t.Fatal(err)
	}
	if !u.CreatedAt().Equal(u.UpdatedAt()) {
		t.Fatal("created and updated must match on register")
	}
	if u.CreatedAt().Location() != time.UTC {
		t.Fatal("timestamps must be UTC")
	}
	if u.CreatedAt().Nanosecond()%1000 != 0 {
		t.Fatal("timestamps must be truncated to microseconds")
	}
	if u.ID().IsZero() {
		t.Fatal("id must be assigned")
	}
}

func TestRename_KeepsIdentity(t *testing.T) {
	now := time.Now()
	u, _ := Register("Ada", "ada@example.com", now)
	r, err := u.Rename("Grace", now.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !r.SameIdentity(u) {
		t.Fatal("rename must keep identity")
	}
	if r.Name().String() != "Grace" || u.Name().String() != "Ada" {
		t.Fatal("rename must not mutate the original snapshot")
	}
	if !r.UpdatedAt().After(u.UpdatedAt()) || !r.CreatedAt().Equal(u.CreatedAt()) {
		t.Fatal("unexpected timestamps")
	}
	if _, err := u.Rename("x", now); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestChangeEmail_SecondaryKeyFollows(t *testing.T) {
	now := time.Now()
	u, _ := Register("Ada", "ada@example.com", now)
	c, err := u.ChangeEmail("ada@lovelace.dev", now)
	if err != nil {
		t.Fatal(err)
	}
	if c.SecondaryKey().String() != "ada@lovelace.dev" || c.EntityID() != u.EntityID() {
		t.Fatal("unexpected keys after email change")
	}
}

func TestRehydrate_RejectsEmpty(t *testing.T) {
	n, _ := ParseName("Ada")
	e, _ := ParseEmail("ada@example.com")
	if _, err := Rehydrate(ID{}, n, e, time.Now(), time.Now()); err == nil {
		t.Fatal("expected error for zero id")
	}
	if _, err := Rehydrate(NewID(), Name{}, e, time.Now(), time.Now()); err == nil {
		t.Fatal("expected error for empty name")
	}
}
