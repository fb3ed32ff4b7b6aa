package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yiba-it/postir/internal/gen"
	"github.com/yiba-it/postir/internal/models"
)

func TestImageHandlerGeneratesImage(t *testing.T) {
	manager := newTestSessionManager()
	profiles := newInMemoryProfileStore()
	generations := &inMemoryGenerationStore{}
	images := &stubImageGenerator{image: &gen.Image{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MIMEType: "image/png", AltText: "a latte"}}
	handler := ImageHandler{Sessions: manager, Profiles: profiles, Generations: generations, Images: images}

	profiles.profiles["user-1"] = models.Profile{UserID: "user-1", Plan: models.PlanFree, TokensTotal: 3, TokensUsed: 1}
	tokens, _ := manager.Issue(context.Background(), "user-1")

	body, _ := json.Marshal(imageRequest{Prompt: "latte art on a wooden table", Platform: "instagram"})
	req := httptest.NewRequest(http.MethodPost, "/api/image", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	var resp imageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.ImageData)
	if err != nil {
		t.Fatalf("image_data is not base64: %v", err)
	}
	if !bytes.Equal(decoded, []byte{0x89, 0x50, 0x4e, 0x47}) {
		t.Fatalf("unexpected image bytes: %v", decoded)
	}
	if resp.MIMEType != "image/png" || resp.AltText != "a latte" {
		t.Fatalf("unexpected metadata: %+v", resp)
	}
	if resp.TokensRemaining != 1 {
		t.Fatalf("expected 1 token remaining got %d", resp.TokensRemaining)
	}
	if len(generations.generations) != 1 || generations.generations[0].Type != models.GenerationImage {
		t.Fatalf("expected one image log got %+v", generations.generations)
	}
}

func TestImageHandlerRequiresPrompt(t *testing.T) {
	manager := newTestSessionManager()
	profiles := newInMemoryProfileStore()
	handler := ImageHandler{Sessions: manager, Profiles: profiles, Generations: &inMemoryGenerationStore{}, Images: &stubImageGenerator{}}

	profiles.profiles["user-1"] = models.Profile{UserID: "user-1", Plan: models.PlanFree, TokensTotal: 3}
	tokens, _ := manager.Issue(context.Background(), "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/image", bytes.NewReader([]byte(`{"prompt":"  "}`)))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestImageHandlerNoImageFromModel(t *testing.T) {
	manager := newTestSessionManager()
	profiles := newInMemoryProfileStore()
	images := &stubImageGenerator{err: gen.ErrNoImage}
	handler := ImageHandler{Sessions: manager, Profiles: profiles, Generations: &inMemoryGenerationStore{}, Images: images}

	profiles.profiles["user-1"] = models.Profile{UserID: "user-1", Plan: models.PlanFree, TokensTotal: 3}
	tokens, _ := manager.Issue(context.Background(), "user-1")

	body, _ := json.Marshal(imageRequest{Prompt: "latte art"})
	req := httptest.NewRequest(http.MethodPost, "/api/image", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}

	// A failed generation must not touch the balance.
	profile, _ := profiles.FindByUserID(context.Background(), "user-1")
	if profile.TokensUsed != 0 {
		t.Fatalf("expected no tokens consumed got %d", profile.TokensUsed)
	}
}
