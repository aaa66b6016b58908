package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Cache stores rate tables per base currency until their TTL elapses.
type Cache interface {
	Get(ctx context.Context, base string) (Table, bool)
	Set(ctx context.Context, table Table, ttl time.Duration) error
}

type memoryEntry struct {
	table     Table
	expiresAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, base string) (Table, bool) {
	m.mu.RLock()
	entry, ok := m.entries[normalize(base)]
	m.mu.RUnlock()
	if !ok || !m.now().Before(entry.expiresAt) {
		return Table{}, false
	}
	return entry.table, true
}

func (m *MemoryCache) Set(_ context.Context, table Table, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[normalize(table.Base)] = memoryEntry{table: table, expiresAt: m.now().Add(ttl)}
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ExchangeRatesKey(base string) string
}

// RedisCache shares rate tables between instances as JSON with a Redis TTL.
type RedisCache struct {
	client redisKV
}

func NewRedisCache(client redisKV) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, base string) (Table, bool) {
	raw, err := r.client.Get(ctx, r.client.ExchangeRatesKey(base))
	if err != nil {
		return Table{}, false
	}
	var table Table
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return Table{}, false
	}
	return table, true
}

func (r *RedisCache) Set(ctx context.Context, table Table, ttl time.Duration) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode rate table: %w", err)
	}
	if err := r.client.Set(ctx, r.client.ExchangeRatesKey(table.Base), raw, ttl); err != nil {
		return fmt.Errorf("cache rate table: %w", err)
	}
	return nil
}
