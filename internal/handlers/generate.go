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

// GenerateHandler implements POST /api/generate: batch social post copy.
type GenerateHandler struct {
	Sessions    SessionManager
	Profiles    ProfileStore
	Generations GenerationStore
	Posts       PostGenerator
}

type generateRequest struct {
	BusinessName   string   `json:"business_name"`
	BusinessType   string   `json:"business_type"`
	TargetAudience string   `json:"target_audience"`
	Platforms      []string `json:"platforms"`
	Tone           string   `json:"tone"`
	Language       string   `json:"language"`
	NumPosts       int      `json:"num_posts"`
	Mode           string   `json:"mode"`
}

type generateResponse struct {
	Posts           []gen.Post `json:"posts"`
	Mode            string     `json:"mode"`
	TokensRemaining *int       `json:"tokens_remaining,omitempty"`
}

// Handle serves post generation. Demo mode is open to anonymous visitors and
// returns canned posts without touching the balance; AI mode requires auth,
// costs one token, and falls back to template copy when the model is down.
func (h GenerateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid generate payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	req = normalizeGenerateRequest(req)

	if len(req.Platforms) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("at least one platform is required"))
		return
	}

	if req.Mode == "demo" {
		respondJSON(ctx, w, http.StatusOK, generateResponse{
			Posts: gen.DemoPosts(req.BusinessName, req.Language, req.Platforms),
			Mode:  "demo",
		})
		return
	}

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
		logger.Error("generate profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	if !profile.CanAfford(models.CostText) {
		respondInsufficientTokens(ctx, w, profile, models.CostText,
			"You've used all your tokens. Upgrade your plan to continue.")
		return
	}

	genReq := gen.PostRequest{
		BusinessName:   req.BusinessName,
		BusinessType:   req.BusinessType,
		TargetAudience: req.TargetAudience,
		Platforms:      req.Platforms,
		Tone:           req.Tone,
		Language:       req.Language,
		NumPosts:       req.NumPosts,
	}

	mode := "ai"
	posts, err := h.Posts.GeneratePosts(ctx, genReq)
	if err != nil {
		logger.Warn("post generation fell back to templates", "error", err, "userId", userID)
		posts = gen.TemplatePosts(genReq)
		mode = "template"
	}

	profile, err = h.Profiles.ConsumeTokens(ctx, userID, models.CostText)
	if err != nil {
		logger.Error("generate failed to consume tokens", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to update token balance"))
		return
	}

	generation := models.Generation{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           models.GenerationText,
		Platform:       req.Platforms[0],
		BusinessName:   req.BusinessName,
		PromptSummary:  fmt.Sprintf("%s | %s | %d posts", req.BusinessName, req.BusinessType, req.NumPosts),
		TokensConsumed: models.CostText,
	}
	if err := h.Generations.Log(ctx, generation); err != nil {
		logger.Error("generate failed to log history", "error", err, "userId", userID)
	}

	remaining := profile.TokensRemaining()
	respondJSON(ctx, w, http.StatusOK, generateResponse{
		Posts:           posts,
		Mode:            mode,
		TokensRemaining: &remaining,
	})
}

func normalizeGenerateRequest(req generateRequest) generateRequest {
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if req.BusinessName == "" {
		req.BusinessName = "My Business"
	}
	if req.BusinessType == "" {
		req.BusinessType = "general"
	}
	if req.Tone == "" {
		req.Tone = "friendly"
	}
	if req.Language == "" {
		req.Language = gen.LanguageBoth
	}
	if req.NumPosts < 1 {
		req.NumPosts = 7
	}
	if req.NumPosts > 30 {
		req.NumPosts = 30
	}
	if req.Mode == "" {
		req.Mode = "ai"
	}
	return req
}
