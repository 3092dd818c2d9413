package cache

import (
	"context"
	"time"
)

// Cache stores raw response bodies from the risk authority for a short TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value or ErrCacheKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A ttl of 0 means the key does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache is available
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}

// NoOpCache is a cache implementation that does nothing (used when caching is disabled)
type NoOpCache struct{}

func (NoOpCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheKeyNotFound
}

func (NoOpCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (NoOpCache) Ping(ctx context.Context) error {
	return nil
}

func (NoOpCache) Close() error {
	return nil
}
