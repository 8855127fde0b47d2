package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perzequiel/woki-brain/internal/brain"
	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
	redisrepo "github.com/perzequiel/woki-brain/internal/repository/redis"
)

type Config struct {
	DayTTL time.Duration
}

type Service struct {
	catalog repository.Catalog
	ledger  repository.Ledger
	cache   *redisrepo.DayCache
	cfg     Config
	logger  *slog.Logger
}

// New builds the listing service. cache may be nil, in which case every call
// reads the ledger.
func New(
	catalog repository.Catalog,
	ledger repository.Ledger,
	cache *redisrepo.DayCache,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DayTTL <= 0 {
		cfg.DayTTL = 30 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		catalog: catalog,
		ledger:  ledger,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

type Day struct {
	RestaurantID string           `json:"restaurantId"`
	SectorID     string           `json:"sectorId,omitempty"`
	Date         string           `json:"date"`
	Items        []domain.Booking `json:"items"`
}

// ListDay returns the bookings of a restaurant day, optionally narrowed to
// one sector, ordered by start then id.
//
// Errors wrap domain.ErrNotFound for an unknown restaurant or a sector of
// another restaurant, and domain.ErrInvalidInput for a malformed date.
func (s *Service) ListDay(ctx context.Context, restaurantID, sectorID, date string) (Day, error) {
	const op = "service.bookings.ListDay"

	restaurant, err := s.catalog.FindRestaurant(ctx, restaurantID)
	if err != nil {
		return Day{}, fmt.Errorf("%s:%w", op, notFound(err, "restaurant %q", restaurantID))
	}

	if sectorID != "" {
		sector, err := s.catalog.FindSector(ctx, sectorID)
		if err != nil {
			return Day{}, fmt.Errorf("%s:%w", op, notFound(err, "sector %q", sectorID))
		}
		if sector.RestaurantID != restaurant.ID {
			return Day{}, fmt.Errorf("%s:%w: sector %q does not belong to restaurant %q",
				op, domain.ErrNotFound, sectorID, restaurantID)
		}
	}

	loc, err := restaurant.Location()
	if err != nil {
		return Day{}, fmt.Errorf("%s:%w", op, err)
	}

	day, err := brain.ParseDay(date, loc)
	if err != nil {
		return Day{}, fmt.Errorf("%s:%w", op, err)
	}
	date = day.Format(time.DateOnly)

	all, err := s.load(ctx, restaurant.ID, date, day)
	if err != nil {
		return Day{}, fmt.Errorf("%s:%w", op, err)
	}

	items := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if sectorID == "" || b.SectorID == sectorID {
			items = append(items, b)
		}
	}

	return Day{RestaurantID: restaurant.ID, SectorID: sectorID, Date: date, Items: items}, nil
}

// Invalidate drops the cached listing of a restaurant day.
func (s *Service) Invalidate(ctx context.Context, restaurantID, date string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, restaurantID, date)
}

func (s *Service) load(ctx context.Context, restaurantID, date string, day time.Time) ([]domain.Booking, error) {
	if s.cache == nil {
		return s.ledger.FindByRestaurantAndDate(ctx, restaurantID, day)
	}

	return s.cache.Load(ctx, restaurantID, date, s.cfg.DayTTL, func(ctx context.Context) ([]domain.Booking, error) {
		return s.ledger.FindByRestaurantAndDate(ctx, restaurantID, day)
	})
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrNotFound}, args...)...)
	}
	return err
}
