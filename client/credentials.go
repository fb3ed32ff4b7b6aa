package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// credentialSchemaVersion identifies the token-pair document layout. Earlier
// deployments persisted a usage counter instead of tokens; that schema is
// rejected rather than migrated.
const credentialSchemaVersion = 2

// CredentialStore persists the access/refresh token pair between runs. Both
// tokens are always saved and cleared together; a store never holds one
// without the other.
type CredentialStore interface {
	Save(accessToken, refreshToken string) error
	Load() (accessToken, refreshToken string, err error)
	Clear() error
}

type credentialDocument struct {
	Version      int    `json:"version"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FileCredentialStore keeps the token pair in a single JSON document on disk.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore constructs a store writing to the given path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Save writes both tokens in one atomic rename so a crash can never leave a
// partial pair behind.
func (s *FileCredentialStore) Save(accessToken, refreshToken string) error {
	doc := credentialDocument{
		Version:      credentialSchemaVersion,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	contents, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, contents, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}

	return nil
}

// Load reads the persisted token pair. Documents from any other schema
// version are treated as unusable.
func (s *FileCredentialStore) Load() (string, string, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", ErrNoCredentials
		}
		return "", "", fmt.Errorf("read credentials: %w", err)
	}

	var doc credentialDocument
	if err := json.Unmarshal(contents, &doc); err != nil {
		return "", "", fmt.Errorf("decode credentials: %w", err)
	}

	if doc.Version != credentialSchemaVersion {
		return "", "", fmt.Errorf("unsupported credential schema version %d", doc.Version)
	}

	if doc.AccessToken == "" || doc.RefreshToken == "" {
		return "", "", ErrNoCredentials
	}

	return doc.AccessToken, doc.RefreshToken, nil
}

// Clear removes the persisted pair; clearing an empty store succeeds.
func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// MemoryCredentialStore is an in-memory CredentialStore for tests.
type MemoryCredentialStore struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	saved        bool
}

// NewMemoryCredentialStore constructs an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Save stores both tokens together.
func (s *MemoryCredentialStore) Save(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.saved = true
	return nil
}

// Load returns the stored pair or ErrNoCredentials.
func (s *MemoryCredentialStore) Load() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return "", "", ErrNoCredentials
	}
	return s.accessToken, s.refreshToken, nil
}

// Clear wipes the stored pair.
func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.saved = false
	return nil
}

var (
	_ CredentialStore = (*FileCredentialStore)(nil)
	_ CredentialStore = (*MemoryCredentialStore)(nil)
)
