package providers

import "context"

// CacheProvider defines the interface for caching operations.
type CacheProvider interface {
	// Get retrieves a value from cache. A miss returns a nil slice and no
	// error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with an expiration.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error
}
