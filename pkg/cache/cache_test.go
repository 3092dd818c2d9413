package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Cache = NoOpCache{}
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)

func TestNoOpCache(t *testing.T) {
	ctx := context.Background()
	c := NoOpCache{}
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheKeyNotFound)
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheKeyNotFound)

	value := []byte(`{"score":90}`)
	require.NoError(t, c.Set(ctx, "honeypot", value, time.Minute))
	value[0] = 'X'

	got, err := c.Get(ctx, "honeypot")
	require.NoError(t, err)
	assert.Equal(t, `{"score":90}`, string(got), "stored value must not alias the caller's slice")

	require.NoError(t, c.Delete(ctx, "honeypot"))
	_, err = c.Get(ctx, "honeypot")
	assert.ErrorIs(t, err, ErrCacheKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("a"), 30*time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))

	now = now.Add(29 * time.Second)
	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheKeyNotFound)
	assert.Equal(t, 1, c.Len())

	now = now.Add(24 * time.Hour)
	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestMemoryCache_WriteSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	for i := 0; i < 10000; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "pinned", []byte("p"), 0))
	assert.Equal(t, 10001, c.Len(), "nothing has expired yet")

	now = now.Add(24 * time.Hour)
	require.NoError(t, c.Set(ctx, "fresh", []byte("f"), time.Minute))
	assert.Equal(t, 2, c.Len(), "only the pinned and the new entry remain")

	_, err := c.Get(ctx, "pinned")
	assert.NoError(t, err)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-redis-url", "")
	assert.Error(t, err)
}
