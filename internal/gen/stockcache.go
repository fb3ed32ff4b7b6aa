package gen

import (
	"context"
	"sync"
	"time"
)

// StockProvider resolves a search keyword to a stock clip URL.
type StockProvider interface {
	FindClip(ctx context.Context, keyword string) (string, error)
}

type clipEntry struct {
	url     string
	expires time.Time
}

// CachingStockProvider wraps another StockProvider with a TTL-based in-memory
// cache. Reel scripts repeat keywords constantly, so this keeps the upstream
// quota usage low.
type CachingStockProvider struct {
	base StockProvider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]clipEntry
}

// NewCachingStockProvider returns a StockProvider that caches lookups for the
// provided TTL.
func NewCachingStockProvider(base StockProvider, ttl time.Duration) *CachingStockProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingStockProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]clipEntry),
	}
}

// FindClip returns a cached clip URL when available, otherwise it delegates to
// the underlying provider and stores the result. Misses (ErrNoClip) are not
// cached so a thin keyword gets another chance next time.
func (c *CachingStockProvider) FindClip(ctx context.Context, keyword string) (string, error) {
	if c == nil || c.base == nil {
		return "", ErrNoClip
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[keyword]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.url, nil
	}

	url, err := c.base.FindClip(ctx, keyword)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.items[keyword] = clipEntry{url: url, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return url, nil
}
