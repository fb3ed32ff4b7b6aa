package handlers

import (
	"context"
	"time"

	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/payment"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// ProfileStore captures plan and token balance persistence.
type ProfileStore interface {
	Create(ctx context.Context, profile models.Profile) error
	FindByUserID(ctx context.Context, userID string) (models.Profile, error)
	ConsumeTokens(ctx context.Context, userID string, amount int) (models.Profile, error)
	ApplyPlan(ctx context.Context, userID, plan string, tokensTotal int, expiresAt *time.Time) error
}

// SessionManager issues, verifies, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Verify(accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// GenerationStore records and lists generation history.
type GenerationStore interface {
	Log(ctx context.Context, generation models.Generation) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Generation, error)
}

// PaymentStore records and lists plan purchases.
type PaymentStore interface {
	Create(ctx context.Context, payment models.Payment) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Payment, error)
}

// PostGenerator produces social post copy.
type PostGenerator interface {
	GeneratePosts(ctx context.Context, req gen.PostRequest) ([]gen.Post, error)
}

// ScriptGenerator produces reel scripts.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req gen.ScriptRequest) ([]gen.Slide, error)
}

// ImageGenerator produces social media images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.Image, error)
}

// ImageStorage persists generated image assets and returns a public URL.
type ImageStorage interface {
	SaveImage(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// CheckoutProvider opens hosted checkout sessions for plan purchases.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, userID string, offer payment.PlanOffer) (payment.CheckoutSession, error)
}
