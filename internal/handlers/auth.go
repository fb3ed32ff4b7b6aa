package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yiba-it/postir/internal/auth"
	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/repositories"
)

// AuthHandler implements user authentication endpoints.
type AuthHandler struct {
	Users    UserStore
	Profiles ProfileStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// SignUp handles POST /api/auth/signup requests. New accounts start on the
// free plan with a small token grant.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Profiles == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("authentication services unavailable"))
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("email and password are required"))
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("signup invalid email", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid email address"))
		return
	}

	if len(req.Password) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("password must be at least 8 characters"))
		return
	}

	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		respondJSON(ctx, w, http.StatusConflict, errorBody("account already exists"))
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("signup user lookup failed", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to verify existing accounts"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("signup failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("failed to secure password"))
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, errorBody("account already exists"))
			return
		}
		logger.Error("signup failed to create user", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("failed to create account"))
		return
	}

	profile := models.Profile{
		UserID:        user.ID,
		Email:         user.Email,
		Plan:          models.PlanFree,
		TokensTotal:   models.FreeSignupTokens,
		TokensUsed:    0,
		PlanStartedAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Profiles.Create(ctx, profile); err != nil {
		logger.Error("signup failed to create profile", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("failed to create account"))
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("signup failed to issue session", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("failed to create session"))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, authResponse{
		SessionTokens: tokens,
		User:          userPayload{ID: user.ID, Email: user.Email},
		Tokens:        profile.TokensRemaining(),
		Plan:          profile.Plan,
	})
}

// Login handles POST /api/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Profiles == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("authentication services unavailable"))
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("email and password are required"))
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	profile, err := h.lookupProfile(ctx, user)
	if err != nil {
		logger.Error("login profile lookup failed", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("failed to create session"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{
		SessionTokens: tokens,
		User:          userPayload{ID: user.ID, Email: user.Email},
		Tokens:        profile.TokensRemaining(),
		Plan:          profile.Plan,
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("session service unavailable"))
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("refresh_token is required"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			status = http.StatusUnauthorized
		}
		logger.Warn("refresh failed", "error", err, "status", status)
		respondJSON(ctx, w, status, errorBody("unable to refresh session"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, tokens)
}

// Me handles GET /api/auth/me requests. A valid access token doubles as the
// client's session probe.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := authenticate(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("me user lookup failed", "userId", userID, "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, errorBody("invalid or expired token"))
		return
	}

	profile, err := h.lookupProfile(ctx, user)
	if err != nil {
		logger.Error("me profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, meResponse{
		User:          userPayload{ID: user.ID, Email: user.Email},
		Plan:          profile.Plan,
		Tokens:        profile.TokensRemaining(),
		TokensTotal:   profile.TokensTotal,
		TokensUsed:    profile.TokensUsed,
		PlanStartedAt: profile.PlanStartedAt,
		PlanExpiresAt: profile.PlanExpiresAt,
	})
}

// Logout revokes the refresh token so it cannot be rotated again.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("session service unavailable"))
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid logout payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken != "" {
		if err := h.Sessions.Revoke(ctx, req.RefreshToken); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			logger.Error("logout failed to revoke session", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to log out"))
			return
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "logged out"})
}

// lookupProfile backfills a free-plan profile for accounts created before the
// profiles table existed.
func (h AuthHandler) lookupProfile(ctx context.Context, user models.User) (models.Profile, error) {
	profile, err := h.Profiles.FindByUserID(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.Profile{}, err
	}

	now := h.now()
	profile = models.Profile{
		UserID:        user.ID,
		Email:         user.Email,
		Plan:          models.PlanFree,
		TokensTotal:   models.FreeSignupTokens,
		PlanStartedAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Profiles.Create(ctx, profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	models.SessionTokens
	User   userPayload `json:"user"`
	Tokens int         `json:"tokens"`
	Plan   string      `json:"plan"`
}

type meResponse struct {
	User          userPayload `json:"user"`
	Plan          string      `json:"plan"`
	Tokens        int         `json:"tokens"`
	TokensTotal   int         `json:"tokens_total"`
	TokensUsed    int         `json:"tokens_used"`
	PlanStartedAt *time.Time  `json:"plan_started_at,omitempty"`
	PlanExpiresAt *time.Time  `json:"plan_expires_at,omitempty"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
