package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/premiumstore/premiumstore-backend/pkg/redis"
)

// MemoryKV is a process-local KV for tests and redis-less runs. TTLs
// are honored lazily on read.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryKV builds an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]memoryEntry{}}
}

func (m *MemoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: toString(value)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.values[key] = entry
	return nil
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.values[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.values, key)
		return "", redis.ErrNotFound
	}
	return entry.value, nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryKV) SessionKey(sessionID, scope string) string {
	return strings.Join([]string{"ps", "session", sessionID, scope}, ":")
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
