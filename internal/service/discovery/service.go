package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/perzequiel/woki-brain/internal/brain"
	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
)

// Query is a seat discovery request. WindowStart and WindowEnd are optional
// "HH:MM" local times.
type Query struct {
	RestaurantID    string
	SectorID        string
	Date            string
	PartySize       int
	DurationMinutes int
	WindowStart     string
	WindowEnd       string
	Limit           int
}

// Scope is the catalog slice a query resolves to.
type Scope struct {
	Restaurant domain.Restaurant
	Sector     domain.Sector
	// Tables in catalog order.
	Tables []domain.Table
	// Day is local midnight of the query date in the restaurant timezone.
	Day time.Time
}

func (s Scope) Date() string {
	return s.Day.Format(time.DateOnly)
}

func (s Scope) TableIDs() []string {
	ids := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		ids[i] = t.ID
	}
	return ids
}

type Result struct {
	Scope Scope
	brain.DiscoverResult
}

type Service struct {
	catalog repository.Catalog
	ledger  repository.Ledger
	logger  *slog.Logger
}

func New(catalog repository.Catalog, ledger repository.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
	}
}

// Discover lists seating options for q, best first. It reads the catalog
// and ledger and changes nothing.
//
// Errors wrap domain.ErrInvalidInput, ErrNotFound, ErrOutsideServiceWindow
// or ErrNoCapacity.
func (s *Service) Discover(ctx context.Context, q Query) (Result, error) {
	const op = "service.discovery.Discover"

	scope, req, err := s.Prepare(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w", op, err)
	}

	res, err := brain.Discover(req)
	if err != nil {
		if errors.Is(err, domain.ErrNoCapacity) {
			s.logger.Info("no capacity",
				slog.String("op", op),
				slog.String("restaurant", q.RestaurantID),
				slog.String("sector", q.SectorID),
				slog.String("date", q.Date),
				slog.Int("party_size", q.PartySize),
			)
		}
		return Result{}, fmt.Errorf("%s:%w", op, err)
	}

	return Result{Scope: scope, DiscoverResult: res}, nil
}

// Prepare validates q, resolves its scope and loads the day's bookings for
// the sector tables into a request the brain can run.
func (s *Service) Prepare(ctx context.Context, q Query) (Scope, brain.DiscoverRequest, error) {
	if err := brain.ValidateInput(q.PartySize, q.DurationMinutes); err != nil {
		return Scope{}, brain.DiscoverRequest{}, err
	}

	windowStart, err := parseClock("windowStart", q.WindowStart)
	if err != nil {
		return Scope{}, brain.DiscoverRequest{}, err
	}
	windowEnd, err := parseClock("windowEnd", q.WindowEnd)
	if err != nil {
		return Scope{}, brain.DiscoverRequest{}, err
	}

	scope, err := s.Resolve(ctx, q.RestaurantID, q.SectorID, q.Date)
	if err != nil {
		return Scope{}, brain.DiscoverRequest{}, err
	}

	bookings, err := s.ledger.FindByTablesAndDate(ctx, scope.TableIDs(), scope.Day)
	if err != nil {
		return Scope{}, brain.DiscoverRequest{}, err
	}

	req := brain.DiscoverRequest{
		Query: brain.Query{
			Day:             scope.Day,
			DurationMinutes: q.DurationMinutes,
			ServiceWindows:  scope.Restaurant.ServiceWindows,
			Location:        scope.Day.Location(),
		},
		Tables:      scope.Tables,
		Bookings:    bookings,
		PartySize:   q.PartySize,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Limit:       q.Limit,
	}

	return scope, req, nil
}

// Resolve loads the restaurant, the sector (which must belong to it) and the
// sector's tables, and places date in the restaurant timezone.
func (s *Service) Resolve(ctx context.Context, restaurantID, sectorID, date string) (Scope, error) {
	restaurant, err := s.catalog.FindRestaurant(ctx, restaurantID)
	if err != nil {
		return Scope{}, notFound(err, "restaurant %q", restaurantID)
	}

	sector, err := s.catalog.FindSector(ctx, sectorID)
	if err != nil {
		return Scope{}, notFound(err, "sector %q", sectorID)
	}
	if sector.RestaurantID != restaurant.ID {
		return Scope{}, fmt.Errorf("%w: sector %q does not belong to restaurant %q",
			domain.ErrNotFound, sectorID, restaurantID)
	}

	tables, err := s.catalog.FindTablesBySector(ctx, sector.ID)
	if err != nil {
		return Scope{}, notFound(err, "tables of sector %q", sectorID)
	}
	if len(tables) == 0 {
		return Scope{}, fmt.Errorf("%w: sector %q has no tables", domain.ErrNotFound, sectorID)
	}

	loc, err := restaurant.Location()
	if err != nil {
		return Scope{}, fmt.Errorf("restaurant %q timezone: %w", restaurantID, err)
	}

	day, err := brain.ParseDay(date, loc)
	if err != nil {
		return Scope{}, err
	}

	return Scope{Restaurant: restaurant, Sector: sector, Tables: tables, Day: day}, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrNotFound}, args...)...)
	}
	return err
}

func parseClock(field, v string) (*domain.ClockTime, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	c, err := domain.ParseClock(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, field, err)
	}
	return &c, nil
}
