package client

import "errors"

// Failure taxonomy surfaced to callers. Gating failures (ErrAuthRequired,
// ErrInsufficientTokens) are resolved without a network call.
var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrAuthExpired        = errors.New("session expired")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrBackend            = errors.New("backend request failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	// ErrNoCredentials is returned by CredentialStore.Load when nothing has
	// been persisted.
	ErrNoCredentials = errors.New("no stored credentials")
)
