// Package memory provides in-process implementations of the catalog, the
// booking ledger, the advisory lock table and the idempotency cache.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
)

// Store keeps the catalog and the ledger in memory. Values are cloned on the
// way in and out so callers never share slices with the store.
type Store struct {
	mu          sync.RWMutex
	restaurants map[string]domain.Restaurant
	sectors     map[string]domain.Sector
	tables      map[string][]domain.Table // by sector, catalog order
	bookings    map[string]domain.Booking
}

func NewStore() *Store {
	return &Store{
		restaurants: make(map[string]domain.Restaurant),
		sectors:     make(map[string]domain.Sector),
		tables:      make(map[string][]domain.Table),
		bookings:    make(map[string]domain.Booking),
	}
}

func (s *Store) AddRestaurant(r domain.Restaurant) error {
	const op = "memory.Store.AddRestaurant"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[r.ID]; ok {
		return fmt.Errorf("%s: restaurant %s:%w", op, r.ID, repository.ErrConflict)
	}
	r.ServiceWindows = slices.Clone(r.ServiceWindows)
	s.restaurants[r.ID] = r
	return nil
}

func (s *Store) AddSector(sec domain.Sector) error {
	const op = "memory.Store.AddSector"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[sec.RestaurantID]; !ok {
		return fmt.Errorf("%s: restaurant %s:%w", op, sec.RestaurantID, repository.ErrNotFound)
	}
	if _, ok := s.sectors[sec.ID]; ok {
		return fmt.Errorf("%s: sector %s:%w", op, sec.ID, repository.ErrConflict)
	}
	s.sectors[sec.ID] = sec
	return nil
}

// AddTable appends t to its sector; insertion order is catalog order.
func (s *Store) AddTable(t domain.Table) error {
	const op = "memory.Store.AddTable"

	if t.MinSize <= 0 || t.MinSize > t.MaxSize {
		return fmt.Errorf("%s: table %s capacity %d-%d is invalid", op, t.ID, t.MinSize, t.MaxSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sectors[t.SectorID]; !ok {
		return fmt.Errorf("%s: sector %s:%w", op, t.SectorID, repository.ErrNotFound)
	}
	for _, tables := range s.tables {
		for _, existing := range tables {
			if existing.ID == t.ID {
				return fmt.Errorf("%s: table %s:%w", op, t.ID, repository.ErrConflict)
			}
		}
	}
	s.tables[t.SectorID] = append(s.tables[t.SectorID], t)
	return nil
}

func (s *Store) FindRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	const op = "memory.Store.FindRestaurant"

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.restaurants[id]
	if !ok {
		return domain.Restaurant{}, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}
	r.ServiceWindows = slices.Clone(r.ServiceWindows)
	return r, nil
}

func (s *Store) FindSector(ctx context.Context, id string) (domain.Sector, error) {
	const op = "memory.Store.FindSector"

	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := s.sectors[id]
	if !ok {
		return domain.Sector{}, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}
	return sec, nil
}

func (s *Store) FindTablesBySector(ctx context.Context, sectorID string) ([]domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.tables[sectorID]), nil
}

func (s *Store) FindByRestaurantAndDate(ctx context.Context, restaurantID string, day time.Time) ([]domain.Booking, error) {
	return s.filterBookings(day, func(b domain.Booking) bool {
		return b.RestaurantID == restaurantID
	}), nil
}

func (s *Store) FindByTablesAndDate(ctx context.Context, tableIDs []string, day time.Time) ([]domain.Booking, error) {
	return s.filterBookings(day, func(b domain.Booking) bool {
		return b.SharesTable(tableIDs)
	}), nil
}

func (s *Store) Append(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const op = "memory.Store.Append"

	if b.ID == "" || len(b.TableIDs) == 0 {
		return domain.Booking{}, fmt.Errorf("%s: booking needs an id and at least one table", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[b.ID]; ok {
		return domain.Booking{}, fmt.Errorf("%s: booking %s:%w", op, b.ID, repository.ErrConflict)
	}

	b.TableIDs = slices.Clone(b.TableIDs)
	s.bookings[b.ID] = b
	return cloneBooking(b), nil
}

// Len reports the number of stored bookings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

func (s *Store) filterBookings(day time.Time, keep func(domain.Booking) bool) []domain.Booking {
	from, to := repository.DayRange(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Booking
	for _, b := range s.bookings {
		if b.Start.Before(from) || !b.Start.Before(to) || !keep(b) {
			continue
		}
		out = append(out, cloneBooking(b))
	}

	slices.SortFunc(out, func(a, b domain.Booking) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.TableIDs = slices.Clone(b.TableIDs)
	return b
}
