package guard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxEntries bounds the in-memory set before it is cleared.
const DefaultMaxEntries = 1000

// Memory is a process-local Guard. Once the set grows past maxEntries it is
// cleared wholesale; this can let a near-duplicate through but never blocks
// a legitimate upload.
type Memory struct {
	mu         sync.Mutex
	keys       map[string]struct{}
	window     time.Duration
	maxEntries int
}

var _ Guard = (*Memory)(nil)

// NewMemory returns an empty in-memory guard.
func NewMemory(window time.Duration, maxEntries int) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		keys:       make(map[string]struct{}),
		window:     window,
		maxEntries: maxEntries,
	}
}

func (m *Memory) Key(userID string, size int64, now time.Time) string {
	return Key(userID, size, now, m.window)
}

func (m *Memory) ShouldReject(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok, nil
}

func (m *Memory) Record(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(key)
	return nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *Memory) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.add(key)
	return true, nil
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// add must be called with mu held.
func (m *Memory) add(key string) {
	if len(m.keys) >= m.maxEntries {
		zap.L().Debug("upload_guard_cleared", zap.Int("entries", len(m.keys)))
		clear(m.keys)
	}
	m.keys[key] = struct{}{}
}
