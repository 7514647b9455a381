package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is the in-process EntityCache used when Redis is unavailable.
// Values are stored as JSON so callers get copies, matching RedisCache.
type MemoryCache struct {
	entries sync.Map // map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	val, ok := m.entries.Load(key)
	if !ok {
		return false, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.entries.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.entries.Store(key, entry)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}
