package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// LockTable is an in-process advisory lock table. Every entry carries its
// expiry and its holder's token; expired entries count as free and are swept
// on access.
type LockTable struct {
	mu       sync.Mutex
	now      func() time.Time
	newToken func() string
	entries  map[string]lockEntry
}

func NewLockTable(now func() time.Time) *LockTable {
	if now == nil {
		now = time.Now
	}
	return &LockTable{
		now:      now,
		newToken: uuid.NewString,
		entries:  make(map[string]lockEntry),
	}
}

func (l *LockTable) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	if _, held := l.entries[key]; held {
		return "", false, nil
	}

	token := l.newToken()
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees key only while token still owns it. A holder whose entry
// expired and was taken over leaves the new owner's lock alone.
func (l *LockTable) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok && e.token == token {
		delete(l.entries, key)
	}
	return nil
}

// Held reports whether key is currently locked. Used by tests to check
// that every path releases.
func (l *LockTable) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	return ok && l.now().Before(e.expiresAt)
}

func (l *LockTable) sweepLocked(now time.Time) {
	for key, e := range l.entries {
		if !now.Before(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}
