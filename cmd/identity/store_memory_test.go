package identity

import (
	"context"
	"testing"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()

	u, err := st.CreateUser(ctx, CreateUserInput{Username: "Alice", PasswordHash: "$argon2id$..."})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if u.UsernameNorm != "alice" {
		t.Fatalf("UsernameNorm = %q, want %q", u.UsernameNorm, "alice")
	}

	got, err := st.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Username != "Alice" {
		t.Fatalf("Username = %q, want %q", got.Username, "Alice")
	}

	// Lookup is case-insensitive.
	ua, err := st.GetUserAuthByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("GetUserAuthByUsername: %v", err)
	}
	if ua.User.ID != u.ID || ua.PasswordHash != "$argon2id$..." {
		t.Fatalf("unexpected auth record: %+v", ua)
	}
}

func TestMemoryStore_UsernameConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.CreateUser(ctx, CreateUserInput{Username: "bob", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := st.CreateUser(ctx, CreateUserInput{Username: "BOB", PasswordHash: "h"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	exists, err := st.UsernameExists(ctx, "Bob")
	if err != nil || !exists {
		t.Fatalf("UsernameExists = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.GetUserByID(ctx, "01ZZZZZZZZZZZZZZZZZZZZZZZZ"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.GetUserAuthByUsername(ctx, "nobody"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
