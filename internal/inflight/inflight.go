package inflight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"care4-server/internal/config"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "care4:inflight:"

// Guard marks keys as busy so only one request at a time works on them.
type Guard interface {
	// Acquire claims key for at most ttl. It reports false when the key is
	// already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// New returns a Redis guard when an address is configured and an in-memory
// guard otherwise.
func New(ctx context.Context, cfg config.RedisConfig) (Guard, error) {
	if cfg.Addr == "" {
		return NewMemory(), nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedis(rdb), nil
}

// Memory is a Guard for a single process.
type Memory struct {
	mu   sync.Mutex
	now  func() time.Time
	held map[string]time.Time
}

// NewMemory returns an empty in-memory guard.
func NewMemory() *Memory {
	return &Memory{now: time.Now, held: make(map[string]time.Time)}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.held[key]; ok && now.Before(until) {
		return false, nil
	}
	m.held[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Redis is a Guard shared by every server instance using the same Redis.
type Redis struct {
	client redisClient
}

// NewRedis wraps a go-redis client.
func NewRedis(client redisClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("inflight: acquire %q: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("inflight: release %q: %w", key, err)
	}
	return nil
}
