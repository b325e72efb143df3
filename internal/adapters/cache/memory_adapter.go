package cache

import (
	"context"
	"sync"
	"time"

	"github.com/slotscout/slotscout/internal/domain/providers"
)

// MemoryAdapter is an in-process CacheProvider. Used in tests and when no
// Redis host is configured.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAdapter creates a new in-memory cache adapter
func NewMemoryAdapter() providers.CacheProvider {
	return &MemoryAdapter{entries: make(map[string]memoryEntry)}
}

// Get retrieves a value from cache. A miss returns a nil slice and no error.
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry, ok := a.entries[key]
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, nil
	}
	return entry.value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := memoryEntry{value: value}
	if expirationSeconds > 0 {
		entry.expiresAt = time.Now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	a.entries[key] = entry
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.entries, key)
	return nil
}
