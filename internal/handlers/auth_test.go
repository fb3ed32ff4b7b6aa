package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yiba-it/postir/internal/models"
)

func TestAuthHandlerSignUp(t *testing.T) {
	users := newInMemoryUserStore()
	profiles := newInMemoryProfileStore()
	manager := newTestSessionManager()
	handler := AuthHandler{Users: users, Profiles: profiles, Sessions: manager}

	body, err := json.Marshal(credentialsRequest{Email: "test@example.com", Password: "supersafe"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp)
	}
	if resp.Plan != models.PlanFree || resp.Tokens != models.FreeSignupTokens {
		t.Fatalf("expected free plan with signup grant, got plan=%s tokens=%d", resp.Plan, resp.Tokens)
	}

	stored, err := users.FindByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}

	if _, err := profiles.FindByUserID(context.Background(), stored.ID); err != nil {
		t.Fatalf("expected profile to be created: %v", err)
	}
}

func TestAuthHandlerSignUpRejectsShortPassword(t *testing.T) {
	handler := AuthHandler{Users: newInMemoryUserStore(), Profiles: newInMemoryProfileStore(), Sessions: newTestSessionManager()}

	body, _ := json.Marshal(credentialsRequest{Email: "short@example.com", Password: "short"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	users := newInMemoryUserStore()
	profiles := newInMemoryProfileStore()
	manager := newTestSessionManager()
	handler := AuthHandler{Users: users, Profiles: profiles, Sessions: manager}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users.users["login@example.com"] = models.User{ID: "user-1", Email: "login@example.com", Password: string(hashed)}
	profiles.profiles["user-1"] = models.Profile{UserID: "user-1", Plan: models.PlanStarter, TokensTotal: 10, TokensUsed: 4}

	body, err := json.Marshal(credentialsRequest{Email: "login@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp)
	}
	if resp.Plan != models.PlanStarter || resp.Tokens != 6 {
		t.Fatalf("expected starter plan with 6 tokens got plan=%s tokens=%d", resp.Plan, resp.Tokens)
	}
}

func TestAuthHandlerLoginRejectsBadPassword(t *testing.T) {
	users := newInMemoryUserStore()
	handler := AuthHandler{Users: users, Profiles: newInMemoryProfileStore(), Sessions: newTestSessionManager()}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	users.users["login@example.com"] = models.User{ID: "user-1", Email: "login@example.com", Password: string(hashed)}

	body, _ := json.Marshal(credentialsRequest{Email: "login@example.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerRefreshRotatesTokens(t *testing.T) {
	manager := newTestSessionManager()
	tokens, err := manager.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	handler := AuthHandler{Sessions: manager}

	body, err := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	var resp models.SessionTokens
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token to be issued")
	}

	// The old token was rotated out; replaying it must fail.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected replay to return %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerMe(t *testing.T) {
	users := newInMemoryUserStore()
	profiles := newInMemoryProfileStore()
	manager := newTestSessionManager()
	handler := AuthHandler{Users: users, Profiles: profiles, Sessions: manager}

	users.users["me@example.com"] = models.User{ID: "user-9", Email: "me@example.com"}
	profiles.profiles["user-9"] = models.Profile{UserID: "user-9", Plan: models.PlanFree, TokensTotal: 3, TokensUsed: 1}

	tokens, err := manager.Issue(context.Background(), "user-9")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}

	var resp meResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != "user-9" || resp.Tokens != 2 {
		t.Fatalf("unexpected me response: %+v", resp)
	}
}

func TestAuthHandlerMeRejectsMissingToken(t *testing.T) {
	handler := AuthHandler{Users: newInMemoryUserStore(), Profiles: newInMemoryProfileStore(), Sessions: newTestSessionManager()}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerLogoutRevokesSession(t *testing.T) {
	manager := newTestSessionManager()
	tokens, err := manager.Issue(context.Background(), "user-5")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	handler := AuthHandler{Sessions: manager}

	body, _ := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatal("expected revoked refresh token to be unusable")
	}
}
