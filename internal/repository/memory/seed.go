package memory

import (
	"context"
	"fmt"

	"github.com/perzequiel/woki-brain/internal/repository"
)

// LoadSeed reads a JSON seed file into a fresh store.
func LoadSeed(path string) (*Store, error) {
	const op = "memory.LoadSeed"

	seed, err := repository.ReadSeed(path)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s := NewStore()
	if err := s.Apply(seed); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return s, nil
}

// Apply loads seed into s. Restaurants go first, then sectors, tables and
// bookings, so references always resolve.
func (s *Store) Apply(seed repository.Seed) error {
	for _, r := range seed.Restaurants {
		if err := s.AddRestaurant(r); err != nil {
			return err
		}
	}
	for _, sec := range seed.Sectors {
		if err := s.AddSector(sec); err != nil {
			return err
		}
	}
	for _, t := range seed.Tables {
		if err := s.AddTable(t); err != nil {
			return err
		}
	}
	for _, b := range seed.Bookings {
		if _, err := s.Append(context.Background(), b); err != nil {
			return err
		}
	}
	return nil
}
