package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/perzequiel/woki-brain/internal/repository"
)

// ImportSeed upserts the seed catalog and appends its bookings in a single
// transaction. Bookings that clash with stored ones are skipped, so importing
// the same file twice is harmless.
func (s *Store) ImportSeed(ctx context.Context, seed repository.Seed) error {
	const op = "postgres.Store.ImportSeed"

	err := s.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		catalog := s.Catalog().With(tx)
		for _, r := range seed.Restaurants {
			if err := catalog.UpsertRestaurant(ctx, r); err != nil {
				return err
			}
		}
		for _, sec := range seed.Sectors {
			if err := catalog.UpsertSector(ctx, sec); err != nil {
				return err
			}
		}
		if err := catalog.UpsertTables(ctx, seed.Tables); err != nil {
			return err
		}

		bookings := s.Bookings().With(tx)
		for _, b := range seed.Bookings {
			_, err := bookings.Append(ctx, b)
			if errors.Is(err, repository.ErrConflict) {
				// already imported; the overlap check runs before any write
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
