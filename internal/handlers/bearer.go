package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
)

// bearerToken extracts the access token from an Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// authenticate verifies the bearer token and returns the caller's user ID.
// It writes the 401 response itself when verification fails.
func authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions SessionManager) (string, bool) {
	logger := logging.FromContext(ctx)

	if sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("session service unavailable"))
		return "", false
	}

	token := bearerToken(r)
	if token == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, errorBody("authentication required"))
		return "", false
	}

	userID, err := sessions.Verify(token)
	if err != nil {
		logger.Warn("access token rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, errorBody("invalid or expired token"))
		return "", false
	}
	return userID, true
}

type insufficientTokensResponse struct {
	Error           string `json:"error"`
	Plan            string `json:"plan"`
	TokensUsed      int    `json:"tokens_used"`
	TokensTotal     int    `json:"tokens_total"`
	TokensRequired  int    `json:"tokens_required,omitempty"`
	UpgradeRequired bool   `json:"upgrade_required"`
}

// respondInsufficientTokens is the 402 payload the frontend turns into an
// upgrade prompt.
func respondInsufficientTokens(ctx context.Context, w http.ResponseWriter, profile models.Profile, cost int, message string) {
	respondJSON(ctx, w, http.StatusPaymentRequired, insufficientTokensResponse{
		Error:           message,
		Plan:            profile.Plan,
		TokensUsed:      profile.TokensUsed,
		TokensTotal:     profile.TokensTotal,
		TokensRequired:  cost,
		UpgradeRequired: true,
	})
}
