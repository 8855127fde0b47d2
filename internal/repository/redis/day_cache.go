package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// DayLoader reads the bookings of one restaurant day from the ledger.
type DayLoader func(ctx context.Context) ([]domain.Booking, error)

// DayCache keeps the booking listing of a restaurant day as JSON. Redis is
// an accelerator only: read failures and unreadable entries fall through to
// the loader, write failures are logged.
type DayCache struct {
	rdb    *redis.Client
	logger *slog.Logger
	sf     singleflight.Group
}

func NewDayCache(rdb *redis.Client, logger *slog.Logger) *DayCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DayCache{rdb: rdb, logger: logger}
}

// Load returns the cached listing or fills it from loader. Concurrent misses
// of the same day share one loader call, which is detached from the
// cancellation of whichever caller started it.
func (c *DayCache) Load(
	ctx context.Context,
	restaurantID, date string,
	ttl time.Duration,
	loader DayLoader,
) ([]domain.Booking, error) {
	key := KeyBookingsDay(restaurantID, date)

	if items, ok := c.read(ctx, key); ok {
		return items, nil
	}

	ch := c.sf.DoChan(key, func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)

		if items, ok := c.read(fillCtx, key); ok {
			return items, nil
		}

		items, err := loader(fillCtx)
		if err != nil {
			return nil, err
		}
		c.write(fillCtx, key, items, ttl)
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		items, ok := res.Val.([]domain.Booking)
		if !ok {
			return nil, fmt.Errorf("day cache: unexpected value %T", res.Val)
		}
		return items, nil
	}
}

// Invalidate drops the cached listing of a restaurant day.
func (c *DayCache) Invalidate(ctx context.Context, restaurantID, date string) error {
	return c.rdb.Del(ctx, KeyBookingsDay(restaurantID, date)).Err()
}

func (c *DayCache) read(ctx context.Context, key string) ([]domain.Booking, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("day cache read failed", slog.String("key", key), slog.Any("err", err))
		return nil, false
	}

	var items []domain.Booking
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("dropping unreadable day cache entry", slog.String("key", key), slog.Any("err", err))
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			c.logger.Warn("day cache delete failed", slog.String("key", key), slog.Any("err", err))
		}
		return nil, false
	}
	if items == nil {
		items = []domain.Booking{}
	}
	return items, true
}

func (c *DayCache) write(ctx context.Context, key string, items []domain.Booking, ttl time.Duration) {
	b, err := json.Marshal(items)
	if err == nil {
		err = c.rdb.Set(ctx, key, b, ttl).Err()
	}
	if err != nil {
		c.logger.Warn("day cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}
