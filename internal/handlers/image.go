package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/logging"
	"github.com/yiba-it/postir/internal/models"
	"github.com/yiba-it/postir/internal/repositories"
)

// ImageHandler implements POST /api/image: single AI-generated social image.
type ImageHandler struct {
	Sessions    SessionManager
	Profiles    ProfileStore
	Generations GenerationStore
	Images      ImageGenerator
	Storage     ImageStorage
}

type imageRequest struct {
	Prompt       string `json:"prompt"`
	Platform     string `json:"platform"`
	BusinessName string `json:"business_name"`
	Style        string `json:"style"`
	Language     string `json:"language"`
}

type imageResponse struct {
	ImageData       string `json:"image_data"`
	MIMEType        string `json:"mime_type"`
	AltText         string `json:"alt_text"`
	ImageURL        string `json:"image_url,omitempty"`
	TokensRemaining int    `json:"tokens_remaining"`
}

func (h ImageHandler) Handle(w http.ResponseWriter, r *http.Request) {
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
		logger.Error("image profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to load profile"))
		return
	}

	if !profile.CanAfford(models.CostImage) {
		respondInsufficientTokens(ctx, w, profile, models.CostImage,
			"Insufficient tokens for image generation. Upgrade your plan to continue.")
		return
	}

	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid image payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respondJSON(ctx, w, http.StatusBadRequest, errorBody("prompt is required"))
		return
	}
	if req.Platform == "" {
		req.Platform = "instagram"
	}

	image, err := h.Images.GenerateImage(ctx, gen.ImageRequest{
		Prompt:       req.Prompt,
		Platform:     req.Platform,
		BusinessName: req.BusinessName,
		Style:        req.Style,
		Language:     req.Language,
	})
	if err != nil {
		if errors.Is(err, gen.ErrNoImage) {
			respondJSON(ctx, w, http.StatusInternalServerError,
				errorBody("no image returned. The model may not have generated an image for this prompt."))
			return
		}
		logger.Error("image generation failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("image generation failed"))
		return
	}

	imageURL := ""
	if h.Storage != nil {
		key := fmt.Sprintf("images/%s/%d-%s%s", userID, time.Now().UTC().Unix(), uuid.NewString()[:8], extensionFor(image.MIMEType))
		imageURL, err = h.Storage.SaveImage(ctx, key, image.Data, image.MIMEType)
		if err != nil {
			logger.Warn("image upload failed, serving inline only", "error", err, "userId", userID)
			imageURL = ""
		}
	}

	profile, err = h.Profiles.ConsumeTokens(ctx, userID, models.CostImage)
	if err != nil {
		logger.Error("image failed to consume tokens", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, errorBody("unable to update token balance"))
		return
	}

	generation := models.Generation{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           models.GenerationImage,
		Platform:       req.Platform,
		BusinessName:   req.BusinessName,
		PromptSummary:  truncate(req.Prompt, 120),
		TokensConsumed: models.CostImage,
	}
	if err := h.Generations.Log(ctx, generation); err != nil {
		logger.Error("image failed to log history", "error", err, "userId", userID)
	}

	respondJSON(ctx, w, http.StatusOK, imageResponse{
		ImageData:       base64.StdEncoding.EncodeToString(image.Data),
		MIMEType:        image.MIMEType,
		AltText:         image.AltText,
		ImageURL:        imageURL,
		TokensRemaining: profile.TokensRemaining(),
	})
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
