package auth

import (
	"context"
	"sync"
)

// MemorySessionStore keeps refresh-token sessions in process memory. It
// backs tests and local development; semantics mirror the Postgres store,
// including ErrSessionNotFound on deleting an unknown token.
type MemorySessionStore struct {
	mu             sync.Mutex
	byRefreshToken map[string]Session
}

// NewMemorySessionStore returns an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{byRefreshToken: make(map[string]Session)}
}

// Save inserts or overwrites the session keyed by its refresh token.
func (s *MemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRefreshToken[session.RefreshToken] = session
	return nil
}

// Find returns the session for the refresh token, or ErrSessionNotFound.
func (s *MemorySessionStore) Find(_ context.Context, refreshToken string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byRefreshToken[refreshToken]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session for the refresh token.
func (s *MemorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRefreshToken[refreshToken]; !ok {
		return ErrSessionNotFound
	}
	delete(s.byRefreshToken, refreshToken)
	return nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
