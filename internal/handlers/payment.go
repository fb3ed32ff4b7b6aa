package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/payment"
)

// PaymentHandler implements POST /api/payment: open a checkout session for a
// plan purchase. The profile is upgraded optimistically so the user can start
// immediately; the payment row stays pending until confirmation.
type PaymentHandler struct {
	Sessions SessionManager
	Profiles ProfileStore
	Payments PaymentStore
	Checkout CheckoutProvider
	NowFunc  func() time.Time
}

type paymentRequest struct {
	Plan string `json:"plan"`
}

type paymentResponse struct {
	SessionID     string `json:"session_id"`
	CheckoutURL   string `json:"checkout_url"`
	IntentID      string `json:"intent_id,omitempty"`
	Plan          string `json:"plan"`
	AmountSAR     int64  `json:"amount_sar"`
	Currency      string `json:"currency"`
	TokensGranted any    `json:"tokens_granted"`
}

func (h PaymentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Checkout == nil {
		logger.Error("checkout provider unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("payment service unavailable"))
		return
	}

	userID, ok := authenticate(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid payment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Plan == "" {
		req.Plan = models.PlanStarter
	}

	offer, err := payment.OfferFor(req.Plan)
	if err != nil {
		if errors.Is(err, payment.ErrUnknownPlan) {
			respondJSON(ctx, w, http.StatusBadRequest, errorBody("unknown plan: "+req.Plan))
			return
		}
		logger.Error("payment offer lookup failed", "error", err, "plan", req.Plan)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to process payment"))
		return
	}

	session, err := h.Checkout.CreateCheckout(ctx, userID, offer)
	if err != nil {
		logger.Error("checkout session creation failed", "error", err, "userId", userID, "plan", offer.Plan)
		respondJSON(ctx, w, http.StatusBadGateway, errorBody("payment service error"))
		return
	}

	now := h.now()
	var planExpiresAt *time.Time
	if offer.DaysValid > 0 {
		expires := now.AddDate(0, 0, offer.DaysValid)
		planExpiresAt = &expires
	}
	if err := h.Profiles.ApplyPlan(ctx, userID, offer.Plan, offer.Tokens, planExpiresAt); err != nil {
		logger.Error("payment failed to apply plan", "error", err, "userId", userID, "plan", offer.Plan)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to apply plan"))
		return
	}

	record := models.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      offer.Plan,
		AmountSAR: float64(offer.AmountSAR),
		Status:    models.PaymentPending,
		IntentID:  session.IntentID,
		CreatedAt: now,
	}
	if err := h.Payments.Create(ctx, record); err != nil {
		logger.Error("payment failed to log record", "error", err, "userId", userID)
	}

	var granted any = offer.Tokens
	if offer.Tokens >= 999999 {
		granted = "unlimited"
	}

	respondJSON(ctx, w, http.StatusOK, paymentResponse{
		SessionID:     session.ID,
		CheckoutURL:   session.RedirectURL,
		IntentID:      session.IntentID,
		Plan:          offer.Plan,
		AmountSAR:     offer.AmountSAR,
		Currency:      "SAR",
		TokensGranted: granted,
	})
}

func (h PaymentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
