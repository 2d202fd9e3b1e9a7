package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Compile-time check: *Memory must satisfy SlotStore.
var _ SlotStore = (*Memory)(nil)

// Memory is an in-process slot store with the same JSON round-trip behavior
// as the SQLite backend. Used by tests and remote-less demos.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string]string)}
}

func (m *Memory) Load(_ context.Context, key string, dest any) bool {
	m.mu.RLock()
	raw, ok := m.slots[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		zap.L().Warn("Discarding corrupt slot document",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

func (m *Memory) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to serialize slot %s: %w", key, err)
	}
	m.mu.Lock()
	m.slots[key] = string(raw)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.slots = make(map[string]string)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Token(ctx context.Context) string {
	var token string
	if m.Load(ctx, SlotToken, &token) {
		return token
	}
	return ""
}

// SetToken exists for auth collaborators and tests; the store itself never
// writes the token slot.
func (m *Memory) SetToken(ctx context.Context, token string) error {
	return m.Save(ctx, SlotToken, token)
}

func (m *Memory) Close() {}
