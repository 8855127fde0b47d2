package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perzequiel/woki-brain/internal/brain"
	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
	"github.com/perzequiel/woki-brain/internal/service/discovery"
	"github.com/perzequiel/woki-brain/internal/uow"
)

type Config struct {
	LockTTL        time.Duration
	IdempotencyTTL time.Duration
}

// Request is a discovery query plus the caller's idempotency key.
type Request struct {
	discovery.Query
	IdempotencyKey string
}

// Hook runs after a booking is stored. date is the booking's local day.
type Hook struct {
	Name string
	Run  func(ctx context.Context, b domain.Booking, date string) error
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithHooks(hooks ...Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

type Service struct {
	discovery *discovery.Service
	ledger    repository.Ledger
	locks     repository.Locker
	idem      repository.IdempotencyCache
	uow       *uow.UoW
	hooks     []Hook
	cfg       Config
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

func New(
	disc *discovery.Service,
	ledger repository.Ledger,
	locks repository.Locker,
	idem repository.IdempotencyCache,
	logger *slog.Logger,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 60 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		discovery: disc,
		ledger:    ledger,
		locks:     locks,
		idem:      idem,
		uow:       uow.NewUoW(logger),
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Allocate books the best candidate for req.
//
// A key seen within the idempotency ttl returns the stored booking without
// touching the catalog, the ledger or the lock table. Otherwise the key is
// claimed for the rest of the call, so a retry racing the first attempt gets
// a conflict instead of a second booking. The chosen candidate is then
// locked, checked again against the ledger and appended.
//
// Errors wrap domain.ErrInvalidInput, ErrNotFound, ErrOutsideServiceWindow,
// ErrNoCapacity or ErrConflict.
func (s *Service) Allocate(ctx context.Context, req Request) (domain.Booking, error) {
	const op = "service.allocation.Allocate"

	if err := brain.ValidateInput(req.PartySize, req.DurationMinutes); err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrMissingIdempotencyKey)
	}

	prev, replayed, err := s.replay(ctx, key)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}
	if replayed {
		return prev, nil
	}

	keyLock := KeyLock(key)
	keyToken, claimed, err := s.locks.TryAcquire(ctx, keyLock, s.cfg.LockTTL)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: key lock:%w", op, err)
	}
	if !claimed {
		s.logger.Warn("idempotency key in flight",
			slog.String("op", op),
			slog.String("key", key),
		)
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrKeyInFlight)
	}
	defer s.release(keyLock, keyToken)

	// the previous holder may have finished between the lookup and the claim
	if prev, replayed, err = s.replay(ctx, key); err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}
	if replayed {
		return prev, nil
	}

	scope, dreq, err := s.discovery.Prepare(ctx, req.Query)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	candidates, err := brain.Candidates(dreq)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	chosen, ok := brain.Select(candidates, req.PartySize)
	if !ok {
		s.logger.Warn("no capacity",
			slog.String("op", op),
			slog.String("restaurant", req.RestaurantID),
			slog.String("sector", req.SectorID),
			slog.String("date", scope.Date()),
			slog.Int("party_size", req.PartySize),
		)
		return domain.Booking{}, fmt.Errorf("%s:%w: no table fits a party of %d", op, domain.ErrNoCapacity, req.PartySize)
	}

	start, end := brain.SlotBounds(chosen, req.DurationMinutes)
	lockKey := LockKey(scope.Restaurant.ID, scope.Sector.ID, chosen.TableIDs, start)

	token, acquired, err := s.locks.TryAcquire(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: lock:%w", op, err)
	}
	if !acquired {
		s.logger.Warn("lock held",
			slog.String("op", op),
			slog.String("lock", lockKey),
		)
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrLockHeld)
	}
	defer s.release(lockKey, token)

	current, err := s.ledger.FindByTablesAndDate(ctx, chosen.TableIDs, scope.Day)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}
	if clash, found := collision(current, chosen.TableIDs, start, end); found {
		s.logger.Warn("collision on re-validation",
			slog.String("op", op),
			slog.String("lock", lockKey),
			slog.String("booking", clash.ID),
		)
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrCollision)
	}

	now := s.now()
	booking := domain.Booking{
		ID:              s.newID(),
		RestaurantID:    scope.Restaurant.ID,
		SectorID:        scope.Sector.ID,
		TableIDs:        slices.Clone(chosen.TableIDs),
		PartySize:       req.PartySize,
		Start:           start,
		End:             end,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.BookingConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, after func(string, uow.AfterCommit)) error {
		saved, err := s.ledger.Append(ctx, booking)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: %v", ErrCollision, err)
			}
			return err
		}
		booking = saved

		if err := s.idem.Put(ctx, key, booking, s.cfg.IdempotencyTTL); err != nil {
			s.logger.Error("idempotency record failed",
				slog.String("op", op),
				slog.String("key", key),
				slog.String("booking", booking.ID),
				slog.Any("err", err),
			)
		}

		for _, h := range s.hooks {
			after(h.Name, func(ctx context.Context) error {
				return h.Run(ctx, booking, scope.Date())
			})
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	s.logger.Info("booking created",
		slog.String("op", op),
		slog.String("booking", booking.ID),
		slog.String("restaurant", booking.RestaurantID),
		slog.String("sector", booking.SectorID),
		slog.Any("tables", booking.TableIDs),
		slog.Time("start", booking.Start),
		slog.Int("party_size", booking.PartySize),
	)

	return booking, nil
}

func (s *Service) replay(ctx context.Context, key string) (domain.Booking, bool, error) {
	b, ok, err := s.idem.Get(ctx, key)
	if err != nil {
		return domain.Booking{}, false, fmt.Errorf("idempotency lookup:%w", err)
	}
	if ok {
		s.logger.Info("idempotent replay",
			slog.String("key", key),
			slog.String("booking", b.ID),
		)
	}
	return b, ok, nil
}

func (s *Service) release(key, token string) {
	// released even when the request context is already gone
	if err := s.locks.Release(context.Background(), key, token); err != nil {
		s.logger.Error("lock release failed", slog.String("lock", key), slog.Any("err", err))
	}
}

// KeyLock is the lock entry that marks an idempotency key as in flight.
func KeyLock(idempotencyKey string) string {
	return "idempotency-key|" + idempotencyKey
}

// LockKey identifies one exact allocation: restaurant, sector, the sorted
// table ids and the UTC start instant.
func LockKey(restaurantID, sectorID string, tableIDs []string, start time.Time) string {
	ids := slices.Clone(tableIDs)
	slices.Sort(ids)

	return strings.Join([]string{
		restaurantID,
		sectorID,
		strings.Join(ids, "+"),
		start.UTC().Format(time.RFC3339),
	}, "|")
}

// collision finds a confirmed booking sharing a table with [start, end).
func collision(bookings []domain.Booking, tableIDs []string, start, end time.Time) (domain.Booking, bool) {
	for _, b := range bookings {
		if b.Status != domain.BookingConfirmed || !b.SharesTable(tableIDs) {
			continue
		}
		if start.Before(b.End) && end.After(b.Start) {
			return b, true
		}
	}
	return domain.Booking{}, false
}
