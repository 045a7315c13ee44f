package download

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CoverCache holds cover images for the lifetime of one batch.
//
// The first GetOrFetch for a key runs fetch; concurrent callers for the same
// key wait for that fetch instead of starting their own. Failed fetches are
// not cached.
type CoverCache struct {
	mu    sync.RWMutex
	data  map[string][]byte
	group singleflight.Group
}

// NewCoverCache creates an empty cache.
func NewCoverCache() *CoverCache {
	return &CoverCache{data: make(map[string][]byte)}
}

// GetOrFetch returns the bytes stored under key, fetching them on a miss.
func (c *CoverCache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.get(key); ok {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if data, ok := c.get(key); ok {
			return data, nil
		}
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.data[key] = data
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Len returns the number of cached covers.
func (c *CoverCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *CoverCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[key]
	return data, ok
}
