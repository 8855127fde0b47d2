package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
)

const selectBooking = `
SELECT b.id, b.restaurant_id, b.sector_id,
       ARRAY(SELECT bt.table_id FROM booking_tables bt WHERE bt.booking_id = b.id ORDER BY bt.position),
       b.party_size, b.start_at, b.end_at, b.duration_minutes, b.status, b.created_at, b.updated_at
FROM bookings b`

type BookingRepo struct {
	pool  *pgxpool.Pool
	store *Store
	db    DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// FindByRestaurantAndDate lists the bookings of a restaurant starting on
// day's date, ordered by start then id.
func (r *BookingRepo) FindByRestaurantAndDate(ctx context.Context, restaurantID string, day time.Time) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.FindByRestaurantAndDate"

	from, to := repository.DayRange(day)
	out, err := r.list(ctx,
		selectBooking+`
		 WHERE b.restaurant_id = $1 AND b.start_at >= $2 AND b.start_at < $3
		 ORDER BY b.start_at, b.id`,
		restaurantID, from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return out, nil
}

// FindByTablesAndDate lists the bookings of day's date that hold any of
// tableIDs.
func (r *BookingRepo) FindByTablesAndDate(ctx context.Context, tableIDs []string, day time.Time) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.FindByTablesAndDate"

	if len(tableIDs) == 0 {
		return nil, nil
	}

	from, to := repository.DayRange(day)
	out, err := r.list(ctx,
		selectBooking+`
		 WHERE b.start_at >= $2 AND b.start_at < $3
		   AND EXISTS (
		       SELECT 1 FROM booking_tables bt
		       WHERE bt.booking_id = b.id AND bt.table_id = ANY($1)
		   )
		 ORDER BY b.start_at, b.id`,
		tableIDs, from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return out, nil
}

// Append stores b and its table rows atomically. When called outside a
// transaction it opens a serializable one.
//
// Returns repository.ErrConflict if the id exists or a confirmed booking
// already overlaps one of the tables.
func (r *BookingRepo) Append(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const op = "postgres.BookingRepo.Append"

	if r.db != nil {
		saved, err := r.appendCore(ctx, r.db, b)
		if err != nil {
			return domain.Booking{}, wrapDBErr(op, err)
		}
		return saved, nil
	}

	var saved domain.Booking
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		saved, err = r.appendCore(ctx, tx, b)
		return err
	})
	if err != nil {
		return domain.Booking{}, wrapDBErr(op, err)
	}

	return saved, nil
}

func (r *BookingRepo) appendCore(ctx context.Context, db DB, b domain.Booking) (domain.Booking, error) {
	if len(b.TableIDs) == 0 {
		return domain.Booking{}, errors.New("booking without tables")
	}
	if b.Status == "" {
		b.Status = domain.BookingConfirmed
	}

	var clash string
	err := db.QueryRow(ctx,
		`SELECT bt.booking_id
		 FROM booking_tables bt
		 JOIN bookings b ON b.id = bt.booking_id
		 WHERE bt.table_id = ANY($1)
		   AND b.status = $4
		   AND bt.start_at < $3 AND bt.end_at > $2
		 LIMIT 1`,
		b.TableIDs, b.Start, b.End, string(domain.BookingConfirmed),
	).Scan(&clash)
	switch {
	case err == nil:
		return domain.Booking{}, fmt.Errorf("overlaps booking %s:%w", clash, repository.ErrConflict)
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.Booking{}, err
	}

	if err := db.QueryRow(ctx,
		`INSERT INTO bookings(id, restaurant_id, sector_id, party_size, start_at, end_at, duration_minutes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		b.ID, b.RestaurantID, b.SectorID, b.PartySize, b.Start, b.End, b.DurationMinutes, string(b.Status),
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Booking{}, err
	}

	batch := &pgx.Batch{}
	for i, tableID := range b.TableIDs {
		batch.Queue(
			`INSERT INTO booking_tables(booking_id, table_id, position, start_at, end_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			b.ID, tableID, i, b.Start, b.End,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Booking{}, err
	}

	return b, nil
}

func (r *BookingRepo) list(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.handle().Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var (
			b      domain.Booking
			status string
		)
		if err := rows.Scan(
			&b.ID, &b.RestaurantID, &b.SectorID, &b.TableIDs,
			&b.PartySize, &b.Start, &b.End, &b.DurationMinutes, &status,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatus(status)
		out = append(out, b)
	}

	return out, rows.Err()
}
