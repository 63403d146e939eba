// Package session holds the authenticated user's bearer token and profile,
// persisted in durable storage and rehydrated at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/Veraticus/finflow/internal/api"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
)

// Durable storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the durable key/value storage behind a session.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
}

// Session is the explicit session context handed to every consumer. It is
// safe for concurrent use and implements oauth2.TokenSource.
type Session struct {
	store     Store
	now       func() time.Time
	user      *model.User
	expiresAt time.Time
	token     string
	mu        sync.RWMutex
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session over store. Call Init before use.
func New(store Store, opts ...Option) *Session {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the token and user from storage. A missing or unparseable user
// leaves the session logged out and discards whatever was stored.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Get(ctx, KeyToken)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}

	raw, err := s.store.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to read session user: %w", err)
	}

	var user model.User
	if err != nil || json.Unmarshal([]byte(raw), &user) != nil || token == "" {
		slog.Warn("discarding unreadable stored session")
		if delErr := s.store.Delete(ctx, KeyToken, KeyUser); delErr != nil {
			return fmt.Errorf("failed to clear session: %w", delErr)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	s.expiresAt = tokenExpiry(token)
	return nil
}

// Login authenticates and persists the token and user.
func (s *Session) Login(ctx context.Context, auth Authenticator, email, password string) (model.User, error) {
	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if resp.Token == "" {
		return model.User{}, fmt.Errorf("login response carried no token")
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.SetMany(ctx, map[string]string{
		KeyToken: resp.Token,
		KeyUser:  string(userJSON),
	}); err != nil {
		return model.User{}, fmt.Errorf("failed to persist session: %w", err)
	}

	expires := tokenExpiry(resp.Token)
	if resp.ExpiresIn > 0 {
		expires = s.now().Add(time.Duration(resp.ExpiresIn) * time.Millisecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.expiresAt = expires

	slog.Info("logged in", "user", user.Email)
	return user, nil
}

// Logout clears memory and storage.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Teardown releases the storage handle.
func (s *Session) Teardown() error {
	return s.store.Close()
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// User returns the logged-in user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// ExpiresAt returns the token expiry, zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Expired reports whether the expiry is known and in the past.
func (s *Session) Expired() bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && !s.now().Before(exp)
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, common.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer", Expiry: s.expiresAt}, nil
}

// tokenExpiry reads the exp claim without verifying the signature. Opaque
// tokens yield the zero time.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

var _ oauth2.TokenSource = (*Session)(nil)
