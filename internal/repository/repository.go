package repository

import (
	"context"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// Catalog is the read-only view of restaurants, sectors and tables.
// Lookups of unknown ids return ErrNotFound.
type Catalog interface {
	FindRestaurant(ctx context.Context, id string) (domain.Restaurant, error)
	FindSector(ctx context.Context, id string) (domain.Sector, error)
	// FindTablesBySector returns the sector's tables in catalog order.
	FindTablesBySector(ctx context.Context, sectorID string) ([]domain.Table, error)
}

// Ledger stores bookings. day is local midnight of the target date; a booking
// belongs to the day its start falls on.
type Ledger interface {
	FindByRestaurantAndDate(ctx context.Context, restaurantID string, day time.Time) ([]domain.Booking, error)
	FindByTablesAndDate(ctx context.Context, tableIDs []string, day time.Time) ([]domain.Booking, error)
	Append(ctx context.Context, b domain.Booking) (domain.Booking, error)
}

// Locker hands out advisory locks that expire after their ttl.
type Locker interface {
	// TryAcquire never waits: it reports whether key was free and is now
	// held, and returns the token that owns it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees key if token still owns it.
	Release(ctx context.Context, key, token string) error
}

// IdempotencyCache maps caller supplied keys to finished bookings.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (domain.Booking, bool, error)
	Put(ctx context.Context, key string, b domain.Booking, ttl time.Duration) error
}

// DayRange returns the half-open instant range [day, next day) of day's date.
func DayRange(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
