// Package dedup guards against double-fired user actions: repeated Enter
// keypresses and rapid duplicate barcode scans arrive as identical requests
// milliseconds apart. A Guard remembers recently seen action keys for a short
// window and admits each key once per window.
package dedup

import (
	"sync"
	"time"
)

type Guard struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Guard{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Admit reports whether the key is new within the window. A rejected key does
// not extend its own window, so a steady stream of duplicates still gets
// through once per window rather than never.
func (g *Guard) Admit(key string) bool {
	if g == nil || key == "" {
		return true
	}
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.evict(now)

	if last, ok := g.seen[key]; ok && now.Sub(last) < g.window {
		return false
	}
	g.seen[key] = now
	return true
}

// evict drops expired keys. Called under g.mu.
func (g *Guard) evict(now time.Time) {
	for key, at := range g.seen {
		if now.Sub(at) >= g.window {
			delete(g.seen, key)
		}
	}
}
