package rates

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the last good rate lookup between page renders. Get reports a
// missing or expired key as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache. A zero ttl keeps entries forever.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// RedisCache is a Cache backed by a Redis server, shared between replicas.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily to the Redis server at addr. Commands honour
// the deadline of the context they are given.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    db,
		ContextTimeoutEnabled: true,
	}))
}

// NewRedisCacheFromClient wraps an existing client. Without
// ContextTimeoutEnabled the client ignores context deadlines and falls back
// to its own read and write timeouts.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
