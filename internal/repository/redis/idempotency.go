package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// resultPrefix marks a stored booking; anything else under the key is ignored.
const resultPrefix = "RES:"

// IdempotencyCache keeps finished bookings in Redis; expiry is delegated to
// the key ttl.
type IdempotencyCache struct {
	rdb *redis.Client
}

func NewIdempotencyCache(rdb *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{rdb: rdb}
}

func (c *IdempotencyCache) Get(ctx context.Context, key string) (domain.Booking, bool, error) {
	const op = "redis.IdempotencyCache.Get"

	v, err := c.rdb.Get(ctx, KeyIdempotency(key)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Booking{}, false, nil
	}
	if err != nil {
		return domain.Booking{}, false, fmt.Errorf("%s:%w", op, err)
	}

	payload, ok := strings.CutPrefix(v, resultPrefix)
	if !ok {
		return domain.Booking{}, false, nil
	}

	var b domain.Booking
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return domain.Booking{}, false, fmt.Errorf("%s:%w", op, err)
	}

	return b, true, nil
}

func (c *IdempotencyCache) Put(ctx context.Context, key string, b domain.Booking, ttl time.Duration) error {
	const op = "redis.IdempotencyCache.Put"

	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := c.rdb.Set(ctx, KeyIdempotency(key), resultPrefix+string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
