package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/repositories"
)

// VideoHandler implements POST /api/video: reel script plus stock clips.
// The frontend assembles the actual video.
type VideoHandler struct {
	Sessions    SessionManager
	Profiles    ProfileStore
	Generations GenerationStore
	Scripts     ScriptGenerator
	Clips       gen.StockProvider
}

type videoRequest struct {
	BusinessName   string `json:"business_name"`
	BusinessType   string `json:"business_type"`
	TargetAudience string `json:"target_audience"`
	Platform       string `json:"platform"`
	Tone           string `json:"tone"`
	Language       string `json:"language"`
}

type videoResponse struct {
	Slides          []gen.Slide `json:"slides"`
	TotalDuration   int         `json:"total_duration"`
	Platform        string      `json:"platform"`
	TokensRemaining int         `json:"tokens_remaining"`
}

func (h VideoHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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
		logger.Error("video profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	if !profile.CanAfford(models.CostVideo) {
		respondInsufficientTokens(ctx, w, profile, models.CostVideo,
			fmt.Sprintf("Video reel generation requires %d tokens. Upgrade your plan to continue.", models.CostVideo))
		return
	}

	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if req.BusinessName == "" {
		req.BusinessName = "My Business"
	}
	if req.BusinessType == "" {
		req.BusinessType = "general"
	}
	if req.Platform == "" {
		req.Platform = "instagram"
	}
	if req.Tone == "" {
		req.Tone = "friendly"
	}
	if req.Language == "" {
		req.Language = gen.LanguageBoth
	}

	slides, err := h.Scripts.GenerateScript(ctx, gen.ScriptRequest{
		BusinessName:   req.BusinessName,
		BusinessType:   req.BusinessType,
		TargetAudience: req.TargetAudience,
		Platform:       req.Platform,
		Tone:           req.Tone,
		Language:       req.Language,
	})
	if err != nil {
		logger.Error("script generation failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("script generation failed"))
		return
	}

	// Clip lookup failures degrade gracefully; a slide without a clip is
	// rendered as a text card.
	if h.Clips != nil {
		for i := range slides {
			url, err := h.Clips.FindClip(ctx, slides[i].VisualKeyword)
			if err != nil {
				continue
			}
			slides[i].VideoURL = url
		}
	}

	profile, err = h.Profiles.ConsumeTokens(ctx, userID, models.CostVideo)
	if err != nil {
		logger.Error("video failed to consume tokens", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to update token balance"))
		return
	}

	generation := models.Generation{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           models.GenerationVideo,
		Platform:       req.Platform,
		BusinessName:   req.BusinessName,
		PromptSummary:  fmt.Sprintf("%s | %s | %s reel", req.BusinessName, req.BusinessType, req.Platform),
		TokensConsumed: models.CostVideo,
	}
	if err := h.Generations.Log(ctx, generation); err != nil {
		logger.Error("video failed to log history", "error", err, "userId", userID)
	}

	totalDuration := 0
	for _, slide := range slides {
		totalDuration += slide.DurationSeconds
	}

	respondJSON(ctx, w, http.StatusOK, videoResponse{
		Slides:          slides,
		TotalDuration:   totalDuration,
		Platform:        req.Platform,
		TokensRemaining: profile.TokensRemaining(),
	})
}
