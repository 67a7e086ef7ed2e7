package cache

import (
	"context"
	"sync"
	"time"

	"assunnahmart/backend/internal/domain"
)

type entry struct {
	value     *domain.OpnameRecap
	expiresAt time.Time
}

// MemoryRecapCache is a per-instance TTL cache. Recaps are cheap to hold and
// the key space is small (one entry per requested date range), so there is no
// size bound; expired entries are pruned on access.
type MemoryRecapCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryRecapCache() *MemoryRecapCache {
	return &MemoryRecapCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryRecapCache) Get(_ context.Context, key string) (*domain.OpnameRecap, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryRecapCache) Set(_ context.Context, key string, value *domain.OpnameRecap, ttl time.Duration) error {
	if value == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryRecapCache) DropAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}
