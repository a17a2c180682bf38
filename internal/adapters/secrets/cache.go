package secrets

import (
	"sync"
	"time"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// secretCache keeps fetched secrets for a TTL so every gateway call does not
// round-trip to the secret backend
type secretCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

func newSecretCache(ttl time.Duration) *secretCache {
	return &secretCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *secretCache) get(path string) *ports.Secret {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[path]
	if !ok || c.now().After(entry.expiresAt) {
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(path string, secret *ports.Secret) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{secret: secret, expiresAt: c.now().Add(c.ttl)}
}
