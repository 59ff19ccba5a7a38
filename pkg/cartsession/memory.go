package cartsession

import (
	"context"
	"sync"
)

// Memory is an in-process Binder for tests.
type Memory struct {
	mu       sync.Mutex
	bindings map[string]uint
}

func NewMemory() *Memory {
	return &Memory{bindings: make(map[string]uint)}
}

func (m *Memory) Bound(_ context.Context, sessionKey string) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bindings[sessionKey]
	return id, ok, nil
}

func (m *Memory) Bind(_ context.Context, sessionKey string, cartID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[sessionKey] = cartID
	return nil
}

func (m *Memory) BindIfAbsent(_ context.Context, sessionKey string, cartID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[sessionKey]; ok {
		return false, nil
	}
	m.bindings[sessionKey] = cartID
	return true, nil
}

func (m *Memory) Clear(_ context.Context, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, sessionKey)
	return nil
}
