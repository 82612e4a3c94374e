package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/mealplan/internal/shared"
	"golang.org/x/oauth2"
)

// Session is the local authentication state, persisted as a JSON [oauth2.Token] at path.
type Session struct {
	mu    sync.RWMutex
	path  string
	token *oauth2.Token
}

var _ oauth2.TokenSource = (*Session)(nil)

// LoadSession reads the token file at path. A missing file yields an unauthenticated session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: token file %s: %v", shared.ErrInvalidInput, path, err)
	}
	s.token = &token
	return s, nil
}

// NewMemorySession returns a session that is never written to disk.
func NewMemorySession(token *oauth2.Token) *Session {
	return &Session{token: token}
}

// IsAuthenticated reports whether the session holds a valid, unexpired token.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Valid()
}

// Token implements [oauth2.TokenSource].
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if !s.token.Valid() {
		return nil, shared.ErrTokenExpired
	}
	return s.token, nil
}

// Save replaces the token and writes it to the token file with owner-only permissions.
func (s *Session) Save(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := json.MarshalIndent(token, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal token: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
		if err := os.WriteFile(s.path, data, 0600); err != nil {
			return fmt.Errorf("failed to write token file: %w", err)
		}
	}

	s.token = token
	return nil
}

// Clear drops the token and removes the token file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove token file: %w", err)
		}
	}

	s.token = nil
	return nil
}
