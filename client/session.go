// Package client is a typed client for the Postir API. A SessionManager owns
// authentication state and keeps credentials fresh; a Gateway gates and
// dispatches generation requests against it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Plan tiers mirrored from the API.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
)

const requestTimeout = 30 * time.Second

// User identifies the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the manager's state snapshot. User is non-nil exactly when
// AccessToken is non-empty.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
	TokenBalance int
	Plan         string
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// SessionManager owns the single session instance. Every operation ends with
// one atomic replacement of the whole snapshot; fields are never mutated
// piecemeal, so an operation that raced a concurrent refresh can never commit
// a half-stale session.
type SessionManager struct {
	baseURL string
	http    *http.Client
	store   CredentialStore

	mu       sync.Mutex
	session  Session
	onChange func(Session)
}

// NewSessionManager constructs a manager talking to baseURL and persisting
// credentials through store.
func NewSessionManager(baseURL string, store CredentialStore) *SessionManager {
	if baseURL == "" {
		panic("client: session manager requires a base URL")
	}
	if store == nil {
		panic("client: session manager requires a credential store")
	}

	return &SessionManager{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		store:   store,
		session: anonymousSession(),
	}
}

// OnChange registers a callback invoked after every session replacement. The
// UI layer subscribes here instead of the manager touching presentation.
func (m *SessionManager) OnChange(fn func(Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Current returns a copy of the session snapshot.
func (m *SessionManager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session)
}

// Restore rebuilds the session from persisted credentials. Callers run it as
// a background goroutine at startup; with nothing persisted the session stays
// anonymous. A stale access token gets one refresh-then-retry before the
// credentials are wiped.
func (m *SessionManager) Restore(ctx context.Context) error {
	accessToken, refreshToken, err := m.store.Load()
	if err != nil {
		m.replace(anonymousSession())
		if errors.Is(err, ErrNoCredentials) {
			return nil
		}
		return err
	}

	if identity, ok := m.probe(ctx, accessToken); ok {
		m.replace(sessionFromIdentity(identity, accessToken, refreshToken))
		return nil
	}

	pair, err := m.exchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		return m.invalidate()
	}

	if err := m.store.Save(pair.AccessToken, pair.RefreshToken); err != nil {
		m.replace(anonymousSession())
		return err
	}

	if identity, ok := m.probe(ctx, pair.AccessToken); ok {
		m.replace(sessionFromIdentity(identity, pair.AccessToken, pair.RefreshToken))
		return nil
	}

	return m.invalidate()
}

// Login authenticates with the API and replaces the session on success. A
// failed attempt leaves the existing session untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "/api/auth/login", email, password)
}

// Signup registers a new account and signs it in.
func (m *SessionManager) Signup(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "/api/auth/signup", email, password)
}

func (m *SessionManager) authenticate(ctx context.Context, path, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var payload authPayload
	status, apiErr, err := m.doJSON(ctx, http.MethodPost, path, "", body, &payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
	case status == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case status == http.StatusConflict:
		return ErrEmailTaken
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, apiErr)
	default:
		return fmt.Errorf("%w: status %d", ErrBackend, status)
	}

	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return fmt.Errorf("%w: incomplete token pair in response", ErrBackend)
	}

	if err := m.store.Save(payload.AccessToken, payload.RefreshToken); err != nil {
		return err
	}

	m.replace(Session{
		User:         &User{ID: payload.User.ID, Email: payload.User.Email},
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenBalance: clampBalance(payload.Tokens),
		Plan:         payload.Plan,
	})

	return nil
}

// Logout revokes the refresh token server-side on a best-effort basis, then
// clears both the session and the persisted credentials. Safe to call on an
// anonymous session.
func (m *SessionManager) Logout(ctx context.Context) error {
	sess := m.Current()
	if sess.RefreshToken != "" {
		body := map[string]string{"refresh_token": sess.RefreshToken}
		// Revocation failures do not block a local logout.
		m.doJSON(ctx, http.MethodPost, "/api/auth/logout", "", body, nil)
	}

	return m.invalidate()
}

// EnsureValid guarantees the access token is usable for an immediately
// following privileged call. The identity probe doubles as a balance sync.
// A later 401 on the privileged call itself must still be treated as a
// second-chance invalidation by the caller.
func (m *SessionManager) EnsureValid(ctx context.Context) bool {
	sess := m.Current()
	if sess.AccessToken == "" {
		return false
	}

	if identity, ok := m.probe(ctx, sess.AccessToken); ok {
		m.replace(sessionFromIdentity(identity, sess.AccessToken, sess.RefreshToken))
		return true
	}

	if sess.RefreshToken == "" {
		m.invalidate()
		return false
	}

	pair, err := m.exchangeRefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		m.invalidate()
		return false
	}

	if err := m.store.Save(pair.AccessToken, pair.RefreshToken); err != nil {
		m.invalidate()
		return false
	}

	identity, ok := m.probe(ctx, pair.AccessToken)
	if !ok {
		m.invalidate()
		return false
	}

	m.replace(sessionFromIdentity(identity, pair.AccessToken, pair.RefreshToken))
	return true
}

// CanAfford reports whether the session may spend cost tokens. Pro plans are
// unmetered; the balance is ignored entirely.
func (m *SessionManager) CanAfford(cost int) bool {
	sess := m.Current()
	if sess.Plan == PlanPro {
		return true
	}
	return sess.TokenBalance >= cost
}

// applyBalance overwrites the balance from a trusted server response. The
// client never decrements locally; the server is the sole authority on cost.
func (m *SessionManager) applyBalance(balance int) {
	m.mu.Lock()
	m.session.TokenBalance = clampBalance(balance)
	snapshot := copySession(m.session)
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// invalidate drops to an anonymous session and wipes persisted credentials.
func (m *SessionManager) invalidate() error {
	err := m.store.Clear()
	m.replace(anonymousSession())
	return err
}

func (m *SessionManager) replace(next Session) {
	m.mu.Lock()
	m.session = next
	snapshot := copySession(next)
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// probe fetches the current identity and balance with the given access token.
func (m *SessionManager) probe(ctx context.Context, accessToken string) (identityPayload, bool) {
	var payload identityPayload
	status, _, err := m.doJSON(ctx, http.MethodGet, "/api/auth/me", accessToken, nil, &payload)
	if err != nil || status != http.StatusOK {
		return identityPayload{}, false
	}
	return payload, true
}

func (m *SessionManager) exchangeRefreshToken(ctx context.Context, refreshToken string) (tokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var pair tokenPair
	status, apiErr, err := m.doJSON(ctx, http.MethodPost, "/api/auth/refresh", "", body, &pair)
	if err != nil {
		return tokenPair{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if status != http.StatusOK {
		return tokenPair{}, fmt.Errorf("refresh rejected: status %d %s", status, apiErr)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return tokenPair{}, errors.New("refresh response missing token pair")
	}

	return pair, nil
}

// doJSON issues one JSON request. On a non-2xx status it returns the server's
// error message alongside the status instead of failing.
func (m *SessionManager) doJSON(ctx context.Context, method, path, bearer string, body, out any) (int, string, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, "", fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, apiErr.Error, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, "", nil
}

type authPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
	Tokens       int    `json:"tokens"`
	Plan         string `json:"plan"`
}

type identityPayload struct {
	User   User   `json:"user"`
	Plan   string `json:"plan"`
	Tokens int    `json:"tokens"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func anonymousSession() Session {
	return Session{Plan: PlanFree}
}

func sessionFromIdentity(identity identityPayload, accessToken, refreshToken string) Session {
	user := identity.User
	return Session{
		User:         &user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenBalance: clampBalance(identity.Tokens),
		Plan:         identity.Plan,
	}
}

func copySession(s Session) Session {
	out := s
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	return out
}

func clampBalance(balance int) int {
	if balance < 0 {
		return 0
	}
	return balance
}
