package app

import (
	"context"
	"fmt"

	"github.com/yiba-it/postir/internal/auth"
	"github.com/yiba-it/postir/internal/config"
	"github.com/yiba-it/postir/internal/db"
	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/handlers"
	"github.com/yiba-it/postir/internal/payment"
	"github.com/yiba-it/postir/internal/repositories"
	"github.com/yiba-it/postir/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. Optional backends (object store, payment processor, stock clips)
// are wired only when configured; their handlers degrade accordingly.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	if cfg.JWTSecret == "" {
		return handlers.Dependencies{}, fmt.Errorf("POSTIR_JWT_SECRET is required")
	}
	sessionStore := repositories.NewPostgresSessionStore(pool)

	gemini, err := gen.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel, cfg.GenerateTimeout)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure gemini: %w", err)
	}

	pexels := gen.NewPexelsClient(cfg.PexelsAPIKey, cfg.PexelsTimeout)
	clips := gen.NewCachingStockProvider(pexels, cfg.StockClipCacheTTL)

	deps := handlers.Dependencies{
		Users:       repositories.NewPostgresUserRepository(pool),
		Profiles:    repositories.NewPostgresProfileRepository(pool),
		Sessions:    auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, []byte(cfg.JWTSecret), sessionStore),
		Generations: repositories.NewPostgresGenerationRepository(pool),
		Payments:    repositories.NewPostgresPaymentRepository(pool),
		Posts:       gemini,
		Scripts:     gemini,
		Images:      gemini,
		Clips:       clips,
	}

	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure object store: %w", err)
		}
		deps.Storage = store
	}

	if cfg.StripeAPIKey != "" {
		checkout, err := payment.NewStripeProvider(cfg.StripeAPIKey, cfg.CheckoutBaseURL)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure stripe: %w", err)
		}
		deps.Checkout = checkout
	}

	return deps, nil
}
