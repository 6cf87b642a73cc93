package inflight

import (
	"context"
	"errors"
	"testing"
	"time"

	"care4-server/internal/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewMemory()
	g.now = func() time.Time { return now }

	ok, err := g.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	ok, _ = g.Acquire(ctx, "other", time.Minute)
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "k"))
	ok, _ = g.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = g.Acquire(ctx, "other", time.Minute)
	assert.True(t, ok, "expired keys can be claimed again")
}

type fakeRedis struct {
	keys   map[string]bool
	setErr error
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *goredis.BoolCmd {
	if f.setErr != nil {
		return goredis.NewBoolResult(false, f.setErr)
	}
	if f.keys[key] {
		return goredis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return goredis.NewIntResult(int64(len(keys)), nil)
}

func TestRedis_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{keys: map[string]bool{}}
	g := NewRedis(fake)

	ok, err := g.Acquire(ctx, "users:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, fake.keys["care4:inflight:users:abc"])

	ok, err = g.Acquire(ctx, "users:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "users:abc"))
	assert.Empty(t, fake.keys)

	fake.setErr = errors.New("connection refused")
	_, err = g.Acquire(ctx, "x", time.Minute)
	assert.ErrorContains(t, err, "connection refused")
}

func TestNew_WithoutAddrIsMemory(t *testing.T) {
	g, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, g)
}
