// Package auth holds the bearer token issued by the external identity
// provider. The token is never verified here; the API does that.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("session expired, please sign in again")

// Claims are the fields read from the token for display and expiry checks.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Static is a TokenProvider holding one token. The zero value is signed out.
type Static struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
	now    func() time.Time
}

func NewStatic(token string) (*Static, error) {
	s := &Static{now: time.Now}
	if token == "" {
		return s, nil
	}
	if err := s.Set(token); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores a new token. Tokens that are not JWTs are rejected.
func (s *Static) Set(token string) error {
	claims, err := Inspect(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()
	return nil
}

// Clear signs the session out.
func (s *Static) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = nil
	s.mu.Unlock()
}

func (s *Static) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Claims returns the claims of the current token, or nil when signed out.
func (s *Static) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil
	}
	c := *s.claims
	return &c
}

// Token implements api.TokenProvider. An expired token is not sent.
func (s *Static) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", nil
	}
	if s.claims != nil && s.claims.ExpiresAt != nil && !s.clock().Before(s.claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	return s.token, nil
}

func (s *Static) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Inspect decodes the token's claims without checking its signature.
func Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: malformed token: %w", err)
	}
	return claims, nil
}
