package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/indianleto/storefront-backend/pkg/kvstore"
	"github.com/indianleto/storefront-backend/pkg/redis"
)

// ErrNotFound signals that nothing was stored under the key yet.
var ErrNotFound = errors.New("cart: key not found")

// Storage is the local key-value store the cart is persisted to.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStorage keeps values in process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type fileStorage struct {
	file *kvstore.File
}

// NewFileStorage persists the cart in a JSON file on disk.
func NewFileStorage(path string) Storage {
	return &fileStorage{file: kvstore.NewFile(path)}
}

func (f *fileStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := f.file.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (f *fileStorage) Set(ctx context.Context, key, value string) error {
	return f.file.Set(ctx, key, value)
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(key string) string
}

type redisStorage struct {
	client redisKV
	ttl    time.Duration
}

// NewRedisStorage keeps the cart in Redis under the namespaced cart key.
func NewRedisStorage(client redisKV, ttl time.Duration) Storage {
	return &redisStorage{client: client, ttl: ttl}
}

func (r *redisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.client.CartKey(key))
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *redisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.CartKey(key), value, r.ttl)
}
