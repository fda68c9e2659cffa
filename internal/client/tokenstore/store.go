// Package tokenstore holds the client's current access token in memory and
// answers expiry questions about it without verifying the signature.
package tokenstore

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Store struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	hasExpiry bool
	now       func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// SetToken stores tok and reads its exp claim. A token that cannot be
// parsed, or has no exp, is kept with an unknown expiry.
func (s *Store) SetToken(tok string) {
	exp, ok := expiryOf(tok)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.expiresAt = exp
	s.hasExpiry = ok
}

func expiryOf(tok string) (time.Time, bool) {
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt reports the exp claim; false means unknown.
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt, s.hasExpiry
}

// IsExpired is true when no token is held or its exp has passed. A token
// with an unknown expiry is treated as live.
func (s *Store) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return true
	}
	if !s.hasExpiry {
		return false
	}
	return !s.now().Before(s.expiresAt)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.hasExpiry = false
}
