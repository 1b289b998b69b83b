// Package session tracks whether the user is signed in. The access and refresh
// tokens live in a persistent Store; only Login and Logout write to it.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store keys. They match the keys the web dashboard keeps in local storage.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrEmptyToken is returned by Login when no access token is supplied.
var ErrEmptyToken = errors.New("session: empty access token")

// State is the session's authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the single source of truth for the current credentials.
// Its methods are safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	store Store
}

// New wraps store. Whatever tokens the store already holds (from a previous
// run) are picked up as the starting state.
func New(store Store) *Session {
	return &Session{store: store}
}

// IsAuthenticated reports whether an access token is present in the store.
func (s *Session) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// State returns Authenticated iff an access token is stored.
func (s *Session) State() State {
	if s.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

// AccessToken returns the stored access token, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.store.Get(AccessTokenKey)
	return v
}

// RefreshToken returns the stored refresh token, or "".
// Nothing exchanges it for a new access token yet.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.store.Get(RefreshTokenKey)
	return v
}

// Login persists both tokens. On failure the store is left signed out.
func (s *Session) Login(access, refresh string) error {
	if access == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(AccessTokenKey, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if refresh == "" {
		if err := s.store.Delete(RefreshTokenKey); err != nil {
			_ = s.store.Delete(AccessTokenKey)
			return fmt.Errorf("clear refresh token: %w", err)
		}
		return nil
	}
	if err := s.store.Set(RefreshTokenKey, refresh); err != nil {
		_ = s.store.Delete(AccessTokenKey)
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Logout removes both tokens.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// Claims is the display information carried by the access token.
type Claims struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// Claims decodes the access token without verifying its signature. The
// result is for display only; the server remains the judge of validity.
func (s *Session) Claims() (Claims, bool) {
	raw := s.AccessToken()
	if raw == "" {
		return Claims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return Claims{}, false
	}

	var c Claims
	if v, ok := mc["user_id"]; ok {
		c.UserID = fmt.Sprint(v)
	} else if sub, err := mc.GetSubject(); err == nil {
		c.UserID = sub
	}
	if v, ok := mc["username"].(string); ok {
		c.Username = v
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}
