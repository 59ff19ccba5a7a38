package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/redis/redistest"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func TestManagerOpenCheckRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	accessID := NewAccessID()
	if err := manager.Open(ctx, accessID, 7); err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.data["sess:"+accessID] != "7" {
		t.Fatalf("expected user id stored, got %q", store.data["sess:"+accessID])
	}
	if store.ttls["sess:"+accessID] != time.Hour {
		t.Fatalf("expected session ttl to match token lifetime")
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestManagerRejectsBlankInput(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	if err := manager.Open(ctx, " ", 1); err == nil {
		t.Fatal("expected blank access id error")
	}
	if err := manager.Open(ctx, "abc", 0); err == nil {
		t.Fatal("expected missing user error")
	}
	if _, err := manager.HasSession(ctx, ""); err == nil {
		t.Fatal("expected blank access id error")
	}
	if err := manager.Revoke(ctx, ""); err == nil {
		t.Fatal("expected blank access id error")
	}
}

func TestNewManagerValidatesConfig(t *testing.T) {
	client, _ := redistest.NewClient()
	if _, err := NewManager(nil, config.JWTConfig{ExpirationMinutes: 10}); err == nil {
		t.Fatal("expected missing client error")
	}
	if _, err := NewManager(client, config.JWTConfig{}); err == nil {
		t.Fatal("expected non-positive ttl error")
	}
	manager, err := NewManager(client, config.JWTConfig{ExpirationMinutes: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.TTL() != 10*time.Minute {
		t.Fatalf("unexpected ttl %v", manager.TTL())
	}
}
