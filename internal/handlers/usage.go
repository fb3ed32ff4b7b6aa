package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/repositories"
)

// UsageHandler implements GET /api/usage: plan, balance, and history.
type UsageHandler struct {
	Sessions    SessionManager
	Profiles    ProfileStore
	Generations GenerationStore
	Payments    PaymentStore
}

type usageResponse struct {
	Plan            string              `json:"plan"`
	TokensTotal     int                 `json:"tokens_total"`
	TokensUsed      int                 `json:"tokens_used"`
	TokensRemaining int                 `json:"tokens_remaining"`
	PlanStartedAt   *time.Time          `json:"plan_started_at,omitempty"`
	PlanExpiresAt   *time.Time          `json:"plan_expires_at,omitempty"`
	History         []models.Generation `json:"history"`
	Payments        []models.Payment    `json:"payments"`
}

func (h UsageHandler) Handle(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.Profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, errorBody("user profile not found"))
			return
		}
		logger.Error("usage profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	// History lookups are non-fatal; the balance summary still works.
	history, err := h.Generations.ListForUser(ctx, userID, 20)
	if err != nil {
		logger.Warn("usage generation history failed", "error", err, "userId", userID)
		history = []models.Generation{}
	}
	payments, err := h.Payments.ListForUser(ctx, userID, 5)
	if err != nil {
		logger.Warn("usage payment history failed", "error", err, "userId", userID)
		payments = []models.Payment{}
	}
	if history == nil {
		history = []models.Generation{}
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	respondJSON(ctx, w, http.StatusOK, usageResponse{
		Plan:            profile.Plan,
		TokensTotal:     profile.TokensTotal,
		TokensUsed:      profile.TokensUsed,
		TokensRemaining: profile.TokensRemaining(),
		PlanStartedAt:   profile.PlanStartedAt,
		PlanExpiresAt:   profile.PlanExpiresAt,
		History:         history,
		Payments:        payments,
	})
}
