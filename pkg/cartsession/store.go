// Package cartsession binds anonymous browser sessions to their active cart.
package cartsession

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/emporium-dev/emporium/pkg/redis"
)

type bindingStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type bindingKeyer interface {
	CartSessionKey(sessionKey string) string
}

// Binder reads and writes the session-key -> cart-id mapping.
type Binder interface {
	Bound(ctx context.Context, sessionKey string) (uint, bool, error)
	Bind(ctx context.Context, sessionKey string, cartID uint) error
	BindIfAbsent(ctx context.Context, sessionKey string, cartID uint) (bool, error)
	Clear(ctx context.Context, sessionKey string) error
}

// Store keeps bindings in Redis with a sliding TTL.
type Store struct {
	store bindingStore
	keyer bindingKeyer
	ttl   time.Duration
}

// NewStore constructs a Redis-backed binding store.
func NewStore(client *redisclient.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart session ttl must be positive")
	}
	return &Store{store: client, keyer: client, ttl: ttl}, nil
}

// NewKey returns a fresh opaque session key.
func NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidKey reports whether key looks like a value produced by NewKey.
func ValidKey(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// Bound returns the cart bound to sessionKey, refreshing the binding TTL.
func (s *Store) Bound(ctx context.Context, sessionKey string) (uint, bool, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return 0, false, nil
	}
	key := s.keyer.CartSessionKey(sessionKey)
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		_ = s.store.Del(ctx, key)
		return 0, false, nil
	}
	if err := s.store.Expire(ctx, key, s.ttl); err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

// Bind stores cartID for sessionKey.
func (s *Store) Bind(ctx context.Context, sessionKey string, cartID uint) error {
	if strings.TrimSpace(sessionKey) == "" {
		return fmt.Errorf("session key is required")
	}
	if cartID == 0 {
		return fmt.Errorf("cart id is required")
	}
	return s.store.Set(ctx, s.keyer.CartSessionKey(sessionKey), strconv.FormatUint(uint64(cartID), 10), s.ttl)
}

// BindIfAbsent stores cartID only when sessionKey has no binding yet. It
// reports whether this call won the binding.
func (s *Store) BindIfAbsent(ctx context.Context, sessionKey string, cartID uint) (bool, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return false, fmt.Errorf("session key is required")
	}
	if cartID == 0 {
		return false, fmt.Errorf("cart id is required")
	}
	return s.store.SetNX(ctx, s.keyer.CartSessionKey(sessionKey), strconv.FormatUint(uint64(cartID), 10), s.ttl)
}

// Clear drops the binding for sessionKey.
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	if strings.TrimSpace(sessionKey) == "" {
		return nil
	}
	return s.store.Del(ctx, s.keyer.CartSessionKey(sessionKey))
}
