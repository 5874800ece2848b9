package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/CodingKingM/relay/internal/cache"
)

// SessionStore issues and resolves opaque session tokens. Tokens live in
// Redis when it is configured; otherwise they are held in process, which
// is the same degraded single-instance mode the cache layer supports.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration

	mu    sync.Mutex
	local map[string]localSession
}

type localSession struct {
	username  string
	expiresAt time.Time
}

// NewSessionStore creates a session store backed by the given cache.
// A nil cache enables the in-process fallback.
func NewSessionStore(c *cache.Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: c,
		ttl:   ttl,
		local: make(map[string]localSession),
	}
}

// Create issues a new session token for the user
func (s *SessionStore) Create(ctx context.Context, username string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	err := s.cache.Set(ctx, sessionKey(token), username, s.ttl)
	if err == nil {
		return token, nil
	}
	if err != cache.ErrCacheDisabled {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.mu.Lock()
	s.local[token] = localSession{username: username, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

// Resolve returns the username behind a token, or false when the token
// is unknown or expired
func (s *SessionStore) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}

	username, err := s.cache.Get(ctx, sessionKey(token))
	if err == nil {
		return username, true
	}
	if err != cache.ErrCacheDisabled {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.local[token]
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.local, token)
		return "", false
	}
	return sess.username, true
}

// Revoke invalidates a token
func (s *SessionStore) Revoke(ctx context.Context, token string) {
	if err := s.cache.Delete(ctx, sessionKey(token)); err != cache.ErrCacheDisabled {
		return
	}
	s.mu.Lock()
	delete(s.local, token)
	s.mu.Unlock()
}

func sessionKey(token string) string {
	return "session:" + token
}
