package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestGenerateAnonymousRequiresAuth(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{
		Kind:      KindText,
		Platforms: []string{"instagram"},
	})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}

	if log.total() != 0 {
		t.Fatalf("gating failure must not reach the network, saw %d requests", log.total())
	}
}

func TestGenerateAnonymousGateWinsOverValidation(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	gateway := NewGateway(manager)

	// Missing platforms AND no session: the auth gate fires first, so the
	// caller is prompted to sign in rather than to fix the form.
	_, err := gateway.Generate(context.Background(), Request{Kind: KindText})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}

	if log.total() != 0 {
		t.Fatalf("gating failure must not reach the network, saw %d requests", log.total())
	}
}

func TestGenerateVideoInsufficientTokens(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanStarter, 2)
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{
		Kind:     KindVideo,
		Platform: "tiktok",
	})
	if !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}

	if log.total() != 0 {
		t.Fatalf("gating failure must not reach the network, saw %d requests", log.total())
	}
}

func TestGenerateTextHappyPath(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanStarter, 5))
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		if bearerOf(r) != "access-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		platforms, _ := body["platforms"].([]any)
		if len(platforms) != 2 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unexpected platforms"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"posts": []map[string]any{
				{"day": 1, "platform": "instagram", "text_ar": "نص", "text_en": "text"},
				{"day": 2, "platform": "x", "text_ar": "نص آخر", "text_en": "more text"},
			},
			"mode":             "ai",
			"tokens_remaining": 4,
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanStarter, 5)
	gateway := NewGateway(manager)

	result, err := gateway.Generate(context.Background(), Request{
		Kind:         KindText,
		BusinessName: "Najd Coffee",
		Platforms:    []string{"instagram", "x"},
		Language:     "both",
		NumPosts:     2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(result.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result.Posts))
	}
	if result.Mode != "ai" {
		t.Fatalf("expected ai mode, got %q", result.Mode)
	}
	if result.TokensRemaining == nil || *result.TokensRemaining != 4 {
		t.Fatalf("expected tokens_remaining 4, got %v", result.TokensRemaining)
	}

	if balance := manager.Current().TokenBalance; balance != 4 {
		t.Fatalf("expected session balance synced to 4, got %d", balance)
	}

	if log.count("POST /api/generate") != 1 {
		t.Fatalf("expected exactly one generate call, got %d", log.count("POST /api/generate"))
	}
}

func TestGenerateDemoEmptyPlatformsFailsLocally(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{
		Kind: KindText,
		Demo: true,
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	if log.total() != 0 {
		t.Fatalf("local validation failure must not reach the network, saw %d requests", log.total())
	}
}

func TestGenerateDemoSkipsAuthGates(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unexpected bearer token"})
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["mode"] != "demo" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected demo mode"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"posts": []map[string]any{
				{"day": 1, "platform": "instagram"},
				{"day": 2, "platform": "tiktok"},
				{"day": 3, "platform": "x"},
			},
			"mode": "demo",
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	gateway := NewGateway(manager)

	result, err := gateway.Generate(context.Background(), Request{
		Kind:      KindText,
		Demo:      true,
		Platforms: []string{"instagram", "tiktok", "x"},
	})
	if err != nil {
		t.Fatalf("demo generate: %v", err)
	}

	if len(result.Posts) != 3 || result.Mode != "demo" {
		t.Fatalf("unexpected demo result: %+v", result)
	}
	if result.TokensRemaining != nil {
		t.Fatalf("demo responses must not carry a balance, got %v", *result.TokensRemaining)
	}
	if manager.Current().TokenBalance != 0 {
		t.Fatalf("demo generation must not touch the balance")
	}
}

func TestGenerateUnauthorizedResponseInvalidatesSession(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanStarter, 5))
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		// Token revoked between the validity probe and the privileged call.
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
	})
	server := newTestServer(t, log, mux)

	store := NewMemoryCredentialStore()
	store.Save("access-1", "refresh-1")

	manager := NewSessionManager(server.URL, store)
	seedSession(manager, PlanStarter, 5)
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{
		Kind:      KindText,
		Platforms: []string{"instagram"},
	})
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}

	if manager.Current().Authenticated() {
		t.Fatalf("expected session invalidated after 401 on privileged call")
	}
	if _, _, err := store.Load(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected credentials wiped, got %v", err)
	}
}

func TestGenerateImage(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanFree, 3))
	mux.HandleFunc("/api/image", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"image_data":       "aGVsbG8=",
			"mime_type":        "image/png",
			"alt_text":         "latte art close-up",
			"image_url":        "https://cdn.example.com/images/u1/latte.png",
			"tokens_remaining": 2,
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanFree, 3)
	gateway := NewGateway(manager)

	result, err := gateway.Generate(context.Background(), Request{
		Kind:     KindImage,
		Prompt:   "latte art close-up",
		Platform: "instagram",
	})
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}

	if result.Image == nil || result.Image.Data != "aGVsbG8=" || result.Image.MIMEType != "image/png" {
		t.Fatalf("unexpected image result: %+v", result.Image)
	}
	if result.Image.URL == "" {
		t.Fatalf("expected stored image URL")
	}
	if manager.Current().TokenBalance != 2 {
		t.Fatalf("expected balance synced to 2, got %d", manager.Current().TokenBalance)
	}
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanFree, 3)
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{Kind: KindImage})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if log.total() != 0 {
		t.Fatalf("local validation failure must not reach the network")
	}
}

func TestGenerateVideoHappyPath(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanStarter, 8))
	mux.HandleFunc("/api/video", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"slides": []map[string]any{
				{"slide": 1, "text_ar": "افتتاحية", "text_en": "opener", "visual_keyword": "coffee", "duration_seconds": 3},
				{"slide": 2, "text_ar": "ختام", "text_en": "closer", "visual_keyword": "barista", "duration_seconds": 4, "video_url": "https://videos.example.com/clip.mp4"},
			},
			"total_duration":   7,
			"platform":         "tiktok",
			"tokens_remaining": 5,
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanStarter, 8)
	gateway := NewGateway(manager)

	result, err := gateway.Generate(context.Background(), Request{
		Kind:         KindVideo,
		BusinessName: "Najd Coffee",
		Platform:     "tiktok",
	})
	if err != nil {
		t.Fatalf("generate video: %v", err)
	}

	if len(result.Slides) != 2 || result.TotalDuration != 7 || result.Platform != "tiktok" {
		t.Fatalf("unexpected video result: %+v", result)
	}
	if manager.Current().TokenBalance != 5 {
		t.Fatalf("expected balance synced to 5, got %d", manager.Current().TokenBalance)
	}
}

func TestGenerateBackendErrorIsNotRetried(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanStarter, 5))
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "generation service unavailable"})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanStarter, 5)
	gateway := NewGateway(manager)

	_, err := gateway.Generate(context.Background(), Request{
		Kind:      KindText,
		Platforms: []string{"instagram"},
	})
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}

	if log.count("POST /api/generate") != 1 {
		t.Fatalf("failed requests must not be retried, saw %d calls", log.count("POST /api/generate"))
	}
	if balance := manager.Current().TokenBalance; balance != 5 {
		t.Fatalf("failed generation must not change the balance, got %d", balance)
	}
}

func TestProPlanBypassesBalanceGate(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanPro, 0))
	mux.HandleFunc("/api/video", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"slides":           []map[string]any{{"slide": 1, "duration_seconds": 3}},
			"total_duration":   3,
			"platform":         "tiktok",
			"tokens_remaining": 0,
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanPro, 0)
	gateway := NewGateway(manager)

	if _, err := gateway.Generate(context.Background(), Request{Kind: KindVideo, Platform: "tiktok"}); err != nil {
		t.Fatalf("expected pro plan to bypass balance gate, got %v", err)
	}
}

func TestHistorySyncsBalance(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanStarter, 9))
	mux.HandleFunc("/api/usage", func(w http.ResponseWriter, r *http.Request) {
		if bearerOf(r) != "access-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"plan":             PlanStarter,
			"tokens_total":     10,
			"tokens_used":      3,
			"tokens_remaining": 7,
			"history": []map[string]any{
				{"type": "video", "platform": "tiktok", "tokens_consumed": 3, "created_at": time.Now().UTC()},
				{"type": "text", "business_name": "Najd Coffee", "tokens_consumed": 1, "created_at": time.Now().UTC().Add(-time.Hour)},
			},
			"payments": []map[string]any{
				{"plan": PlanStarter, "amount_sar": 10.0, "status": "pending", "created_at": time.Now().UTC()},
			},
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanStarter, 9)
	gateway := NewGateway(manager)

	usage, err := gateway.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(usage.History) != 2 || usage.History[0].Type != "video" {
		t.Fatalf("unexpected history: %+v", usage.History)
	}
	if len(usage.Payments) != 1 || usage.Payments[0].AmountSAR != 10 {
		t.Fatalf("unexpected payments: %+v", usage.Payments)
	}
	if manager.Current().TokenBalance != 7 {
		t.Fatalf("expected balance synced from usage, got %d", manager.Current().TokenBalance)
	}
}

func TestHistoryRequiresAuth(t *testing.T) {
	log := &requestLog{}
	server := newTestServer(t, log, http.NewServeMux())

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	gateway := NewGateway(manager)

	if _, err := gateway.History(context.Background()); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if log.total() != 0 {
		t.Fatalf("anonymous history must not reach the network")
	}
}

func TestCheckoutStartsPaymentSession(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", meHandler("access-1", "owner@example.com", PlanFree, 0))
	mux.HandleFunc("/api/payment", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["plan"] != PlanStarter {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown plan"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":   "cs_test_123",
			"checkout_url": "https://checkout.stripe.com/c/pay/cs_test_123",
			"plan":         PlanStarter,
			"amount_sar":   10,
			"currency":     "sar",
		})
	})
	server := newTestServer(t, log, mux)

	manager := NewSessionManager(server.URL, NewMemoryCredentialStore())
	seedSession(manager, PlanFree, 0)
	gateway := NewGateway(manager)

	checkout, err := gateway.Checkout(context.Background(), PlanStarter)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if checkout.SessionID != "cs_test_123" || checkout.CheckoutURL == "" {
		t.Fatalf("unexpected checkout payload: %+v", checkout)
	}
	if checkout.AmountSAR != 10 || checkout.Currency != "sar" {
		t.Fatalf("unexpected amount/currency: %+v", checkout)
	}

	if _, err := gateway.Checkout(context.Background(), "platinum"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown plan, got %v", err)
	}
}
