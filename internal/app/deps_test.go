package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yiba-it/postir/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		JWTSecret:         "test-secret",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		GeminiAPIKey:      "test-key",
		GeminiTextModel:   "gemini-2.0-flash",
		GeminiImageModel:  "gemini-2.0-flash-exp",
		PexelsTimeout:     time.Second,
		StockClipCacheTTL: time.Minute,
	}

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Profiles == nil {
		t.Fatal("expected profile repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Generations == nil {
		t.Fatal("expected generation repository to be configured")
	}
	if deps.Payments == nil {
		t.Fatal("expected payment repository to be configured")
	}
	if deps.Posts == nil || deps.Scripts == nil || deps.Images == nil {
		t.Fatal("expected generators to be configured")
	}
	if deps.Clips == nil {
		t.Fatal("expected stock clip provider to be configured")
	}
	if deps.Storage != nil {
		t.Fatal("expected object store to stay unconfigured without a bucket")
	}
	if deps.Checkout != nil {
		t.Fatal("expected checkout to stay unconfigured without a stripe key")
	}
}

func TestBuildDependenciesRequiresSecret(t *testing.T) {
	cfg := config.Config{GeminiAPIKey: "test-key"}

	if _, err := buildDependencies(context.Background(), fakePool{}, cfg); err == nil {
		t.Fatal("expected error for missing signing secret")
	}
}
