package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionStoreSaveFindAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	session := Session{
		RefreshToken: "refresh-1",
		UserID:       "user-1",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Find(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.UserID != session.UserID || !loaded.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	updated := session
	updated.ExpiresAt = session.ExpiresAt.Add(time.Hour)
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	loaded, err = store.Find(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("find after overwrite: %v", err)
	}
	if !loaded.ExpiresAt.Equal(updated.ExpiresAt) {
		t.Fatalf("expected updated expiry, got %v", loaded.ExpiresAt)
	}

	if err := store.Delete(ctx, session.RefreshToken); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Find(ctx, session.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}

	if err := store.Delete(ctx, session.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func TestMemorySessionStoreFindUnknownToken(t *testing.T) {
	store := NewMemorySessionStore()
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
