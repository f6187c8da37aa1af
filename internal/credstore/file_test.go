package credstore

import (
	"context"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, _, ok, err := store.Get(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"id":"cred-1","publicKey":"abc"}`)
	if err := store.Put(ctx, payload, "alice"); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A fresh store over the same directory must see the pair, like a new
	// process over the same profile.
	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	credential, username, ok, err := reopened.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("get after put: ok=%v err=%v", ok, err)
	}
	if string(credential) != string(payload) {
		t.Fatalf("credential mismatch: %s", credential)
	}
	if username != "alice" {
		t.Fatalf("expected username alice, got %q", username)
	}
}

func TestFileStorePutWithoutUsername(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, []byte(`{"id":"cred-1"}`), "alice"); err != nil {
		t.Fatalf("put: %v", err)
	}
	// A login-only put replaces the pair; the old username must not survive.
	if err := store.Put(ctx, []byte(`{"id":"cred-2"}`), ""); err != nil {
		t.Fatalf("put: %v", err)
	}

	_, username, ok, err := store.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if username != "" {
		t.Fatalf("expected no username, got %q", username)
	}
}

func TestFileStoreClearIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}

	if err := store.Put(ctx, []byte(`{"id":"cred-1"}`), "alice"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	if _, _, ok, _ := store.Get(ctx); ok {
		t.Fatalf("expected empty store after clear")
	}
}

func TestFileStoreRejectsEmptyCredential(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Put(context.Background(), nil, "alice"); err == nil {
		t.Fatalf("expected error for empty credential")
	}
}
