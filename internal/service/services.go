package service

import (
	"context"
	"log/slog"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
	redisrepo "github.com/perzequiel/woki-brain/internal/repository/redis"
	"github.com/perzequiel/woki-brain/internal/service/allocation"
	"github.com/perzequiel/woki-brain/internal/service/bookings"
	"github.com/perzequiel/woki-brain/internal/service/discovery"
)

type Services struct {
	Discovery  *discovery.Service
	Allocation *allocation.Service
	Bookings   *bookings.Service
}

type Config struct {
	Allocation allocation.Config
	Bookings   bookings.Config
}

// Deps are the collaborators the services run on. Cache and Events are
// optional.
type Deps struct {
	Catalog     repository.Catalog
	Ledger      repository.Ledger
	Locks       repository.Locker
	Idempotency repository.IdempotencyCache
	Cache       *redisrepo.DayCache
	Events      *redisrepo.BookingEvents
}

func NewServices(deps Deps, logger *slog.Logger, cfg Config, opts ...allocation.Option) *Services {
	disc := discovery.New(deps.Catalog, deps.Ledger, logger)
	list := bookings.New(deps.Catalog, deps.Ledger, deps.Cache, logger, cfg.Bookings)

	var hooks []allocation.Hook
	if deps.Cache != nil {
		hooks = append(hooks, allocation.Hook{
			Name: "invalidate-day",
			Run: func(ctx context.Context, b domain.Booking, date string) error {
				return list.Invalidate(ctx, b.RestaurantID, date)
			},
		})
	}
	if deps.Events != nil {
		hooks = append(hooks, allocation.Hook{
			Name: "publish-booking-created",
			Run:  deps.Events.PublishBookingCreated,
		})
	}

	opts = append(opts, allocation.WithHooks(hooks...))

	return &Services{
		Discovery:  disc,
		Allocation: allocation.New(disc, deps.Ledger, deps.Locks, deps.Idempotency, logger, cfg.Allocation, opts...),
		Bookings:   list,
	}
}
