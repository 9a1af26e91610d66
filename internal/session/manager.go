// Package session maps opaque client tokens to user ids.
//
// A token is an HS256 JWT whose jti is a random session id. The session id is
// the key of a Redis entry holding the user id, so logging out takes effect
// immediately even though the token itself has not expired.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/warbler-app/warbler/pkg/cache"
)

const keyPrefix = "session:"

// Store is the subset of cache.RedisClient used for session entries.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Login starts a session for userID and returns its token.
func (m *Manager) Login(ctx context.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, keyPrefix+sessionID, strconv.FormatUint(uint64(userID), 10), m.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to token. ok is false for malformed,
// expired, forged or logged-out tokens; err is reserved for store failures.
func (m *Manager) Resolve(ctx context.Context, token string) (uint, bool, error) {
	sessionID, ok := m.sessionID(token)
	if !ok {
		return 0, false, nil
	}

	val, err := m.store.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(userID), true, nil
}

// Logout ends the session behind token. Unknown tokens are ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	sessionID, ok := m.sessionID(token)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, keyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *Manager) sessionID(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
