package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when a request needs a bearer token and none is set
var ErrNoToken = errors.New("not logged in")

// Claims are the fields the recruiter UI reads from the backend JWT
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type storedSession struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}

// Session holds the recruiter's bearer token and role.
// It is passed explicitly to everything that calls the backend.
type Session struct {
	mu        sync.RWMutex
	path      string
	token     string
	role      string
	listeners []func()
}

// NewSession creates an empty session persisted at path. An empty path keeps
// the session in memory only.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// LoadSession restores a session from its token file. A missing file yields an
// empty session.
func LoadSession(path string) (*Session, error) {
	s := NewSession(path)
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	s.token = stored.Token
	s.role = stored.Role
	return s, nil
}

// Set stores a new token and role and persists them
func (s *Session) Set(token, role string) error {
	s.mu.Lock()
	s.token = token
	s.role = role
	s.mu.Unlock()

	log.Printf("Session set for role %q (token %s)", role, Redact(token))
	return s.save()
}

// Clear forgets the token and role and removes the token file
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Token returns the current bearer token, empty when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role returns the stored user role
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Authenticated reports whether a token is present
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Claims decodes the token payload without verifying the signature.
// Verification is the backend's job; the client only reads display fields.
func (s *Session) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token carries an expiry before now. Tokens
// that are not JWTs or carry no expiry are never considered expired.
func (s *Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

// OnAuthFailure registers fn to run after the backend rejects the token
func (s *Session) OnAuthFailure(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Invalidate clears the session after a 401/403 and notifies listeners
func (s *Session) Invalidate() {
	if err := s.Clear(); err != nil {
		log.Printf("Warning: %v", err)
	}

	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// TokenSource adapts the session for oauth2.Transport
func (s *Session) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{s}
}

type sessionTokenSource struct {
	s *Session
}

func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	token := ts.s.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (s *Session) save() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	stored := storedSession{Token: s.token, Role: s.role}
	s.mu.RUnlock()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Redact shortens a token for logging
func Redact(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}
