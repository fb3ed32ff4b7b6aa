package handlers

import (
	"context"
	"time"

	"github.com/yiba-it/postir/internal/auth"
	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/payment"
	"github.com/yiba-it/postir/internal/repositories"
)

func newTestSessionManager() *auth.Manager {
	return auth.NewManager(time.Minute, time.Hour, []byte("test-signing-secret"), auth.NewMemorySessionStore())
}

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrConflict
	}
	s.users[user.Email] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

type inMemoryProfileStore struct {
	profiles map[string]models.Profile
}

func newInMemoryProfileStore() *inMemoryProfileStore {
	return &inMemoryProfileStore{profiles: make(map[string]models.Profile)}
}

func (s *inMemoryProfileStore) Create(_ context.Context, profile models.Profile) error {
	if _, exists := s.profiles[profile.UserID]; exists {
		return repositories.ErrConflict
	}
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *inMemoryProfileStore) FindByUserID(_ context.Context, userID string) (models.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func (s *inMemoryProfileStore) ConsumeTokens(_ context.Context, userID string, amount int) (models.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, repositories.ErrNotFound
	}
	profile.TokensUsed += amount
	s.profiles[userID] = profile
	return profile, nil
}

func (s *inMemoryProfileStore) ApplyPlan(_ context.Context, userID, plan string, tokensTotal int, expiresAt *time.Time) error {
	profile, ok := s.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	now := time.Now().UTC()
	profile.Plan = plan
	profile.TokensTotal = tokensTotal
	profile.TokensUsed = 0
	profile.PlanStartedAt = &now
	profile.PlanExpiresAt = expiresAt
	s.profiles[userID] = profile
	return nil
}

type inMemoryGenerationStore struct {
	generations []models.Generation
}

func (s *inMemoryGenerationStore) Log(_ context.Context, generation models.Generation) error {
	s.generations = append(s.generations, generation)
	return nil
}

func (s *inMemoryGenerationStore) ListForUser(_ context.Context, userID string, limit int) ([]models.Generation, error) {
	var out []models.Generation
	for i := len(s.generations) - 1; i >= 0 && len(out) < limit; i-- {
		if s.generations[i].UserID == userID {
			out = append(out, s.generations[i])
		}
	}
	return out, nil
}

type inMemoryPaymentStore struct {
	payments []models.Payment
}

func (s *inMemoryPaymentStore) Create(_ context.Context, p models.Payment) error {
	s.payments = append(s.payments, p)
	return nil
}

func (s *inMemoryPaymentStore) ListForUser(_ context.Context, userID string, limit int) ([]models.Payment, error) {
	var out []models.Payment
	for i := len(s.payments) - 1; i >= 0 && len(out) < limit; i-- {
		if s.payments[i].UserID == userID {
			out = append(out, s.payments[i])
		}
	}
	return out, nil
}

type stubPostGenerator struct {
	posts []gen.Post
	err   error
	calls int
}

func (s *stubPostGenerator) GeneratePosts(context.Context, gen.PostRequest) ([]gen.Post, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.posts, nil
}

type stubScriptGenerator struct {
	slides []gen.Slide
	err    error
}

func (s *stubScriptGenerator) GenerateScript(context.Context, gen.ScriptRequest) ([]gen.Slide, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.slides, nil
}

type stubImageGenerator struct {
	image *gen.Image
	err   error
}

func (s *stubImageGenerator) GenerateImage(context.Context, gen.ImageRequest) (*gen.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.image, nil
}

type stubClipProvider struct {
	url string
	err error
}

func (s *stubClipProvider) FindClip(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubCheckoutProvider struct {
	session payment.CheckoutSession
	err     error
	lastID  string
	offer   payment.PlanOffer
}

func (s *stubCheckoutProvider) CreateCheckout(_ context.Context, userID string, offer payment.PlanOffer) (payment.CheckoutSession, error) {
	s.lastID = userID
	s.offer = offer
	if s.err != nil {
		return payment.CheckoutSession{}, s.err
	}
	return s.session, nil
}
