package memory

import (
	"context"
	"sync"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

type idempotencyEntry struct {
	booking   domain.Booking
	expiresAt time.Time
}

// IdempotencyCache keeps finished bookings by idempotency key until their
// ttl passes. Expired entries are never returned.
type IdempotencyCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]idempotencyEntry
}

func NewIdempotencyCache(now func() time.Time) *IdempotencyCache {
	if now == nil {
		now = time.Now
	}
	return &IdempotencyCache{
		now:     now,
		entries: make(map[string]idempotencyEntry),
	}
}

func (c *IdempotencyCache) Get(ctx context.Context, key string) (domain.Booking, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Booking{}, false, nil
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return domain.Booking{}, false, nil
	}

	return cloneBooking(entry.booking), true, nil
}

func (c *IdempotencyCache) Put(ctx context.Context, key string, b domain.Booking, ttl time.Duration) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = idempotencyEntry{booking: cloneBooking(b), expiresAt: now.Add(ttl)}
	return nil
}

// Len reports the number of entries, expired or not. Tests use it to
// check what was recorded.
func (c *IdempotencyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
