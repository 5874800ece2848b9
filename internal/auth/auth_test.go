package auth

import (
	"context"
	"testing"
	"time"
)

func TestHashAndVerifyCredential(t *testing.T) {
	hash, err := HashCredential("secret")
	if err != nil {
		t.Fatalf("HashCredential() error = %v", err)
	}
	if hash == "secret" {
		t.Fatal("HashCredential() returned the plaintext")
	}
	if !VerifyCredential(hash, "secret") {
		t.Error("VerifyCredential() = false for correct password")
	}
	if VerifyCredential(hash, "wrong") {
		t.Error("VerifyCredential() = true for wrong password")
	}
}

func TestSessionStoreLocalFallback(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(nil, time.Hour)

	token, err := store.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if token == "" {
		t.Fatal("Create() returned empty token")
	}

	username, ok := store.Resolve(ctx, token)
	if !ok || username != "alice" {
		t.Errorf("Resolve() = (%q, %v), want (alice, true)", username, ok)
	}

	store.Revoke(ctx, token)
	if _, ok := store.Resolve(ctx, token); ok {
		t.Error("Resolve() after Revoke() = true, want false")
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(nil, -time.Second)

	token, err := store.Create(ctx, "bob")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, ok := store.Resolve(ctx, token); ok {
		t.Error("Resolve() of expired session = true, want false")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	if _, ok := store.Resolve(context.Background(), "nope"); ok {
		t.Error("Resolve() of unknown token = true, want false")
	}
	if _, ok := store.Resolve(context.Background(), ""); ok {
		t.Error("Resolve() of empty token = true, want false")
	}
}
