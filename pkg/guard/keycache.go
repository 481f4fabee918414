package guard

import (
	"context"
	"sync"
	"time"
)

// APIKey is the signing identity the guard checks requests against.
type APIKey struct {
	ID      string
	Name    string
	Secret  string
	Revoked bool
	RPM     int
}

// KeySource loads the current API key definitions.
type KeySource interface {
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
}

// KeyCache holds a snapshot of API keys, replaced wholesale on Reload.
type KeyCache struct {
	src KeySource

	mu       sync.RWMutex
	keys     map[string]APIKey
	loadedAt time.Time
}

func NewKeyCache(src KeySource) *KeyCache {
	return &KeyCache{src: src, keys: make(map[string]APIKey)}
}

// Reload replaces the snapshot. On error the previous snapshot is kept.
func (c *KeyCache) Reload(ctx context.Context) error {
	keys, err := c.src.ListAPIKeys(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]APIKey, len(keys))
	for _, k := range keys {
		next[k.ID] = k
	}

	c.mu.Lock()
	c.keys = next
	c.loadedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *KeyCache) Lookup(id string) (APIKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.keys[id]
	return k, ok
}

func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

func (c *KeyCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
