package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perzequiel/woki-brain/internal/domain"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// FindRestaurant retrieves a restaurant with its service windows.
//
// Returns repository.ErrNotFound if the restaurant does not exist.
func (r *CatalogRepo) FindRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	const op = "postgres.CatalogRepo.FindRestaurant"

	var rest domain.Restaurant
	err := r.handle().QueryRow(ctx,
		`SELECT id, name, timezone, service_windows, created_at, updated_at
		 FROM restaurants WHERE id = $1`,
		id,
	).Scan(&rest.ID, &rest.Name, &rest.Timezone, &rest.ServiceWindows, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return domain.Restaurant{}, wrapDBErr(op, err)
	}

	return rest, nil
}

func (r *CatalogRepo) FindSector(ctx context.Context, id string) (domain.Sector, error) {
	const op = "postgres.CatalogRepo.FindSector"

	var s domain.Sector
	err := r.handle().QueryRow(ctx,
		`SELECT id, restaurant_id, name, created_at, updated_at
		 FROM sectors WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.RestaurantID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Sector{}, wrapDBErr(op, err)
	}

	return s, nil
}

// FindTablesBySector lists the sector's tables by position, which is the
// catalog order combos are built from.
func (r *CatalogRepo) FindTablesBySector(ctx context.Context, sectorID string) ([]domain.Table, error) {
	const op = "postgres.CatalogRepo.FindTablesBySector"

	rows, err := r.handle().Query(ctx,
		`SELECT id, sector_id, name, min_size, max_size, created_at, updated_at
		 FROM dining_tables
		 WHERE sector_id = $1
		 ORDER BY position, id`,
		sectorID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.SectorID, &t.Name, &t.MinSize, &t.MaxSize, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// UpsertRestaurant inserts r or refreshes its name, timezone and windows.
func (r *CatalogRepo) UpsertRestaurant(ctx context.Context, rest domain.Restaurant) error {
	const op = "postgres.CatalogRepo.UpsertRestaurant"

	windows := rest.ServiceWindows
	if windows == nil {
		windows = []domain.ServiceWindow{}
	}

	_, err := r.handle().Exec(ctx,
		`INSERT INTO restaurants(id, name, timezone, service_windows)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     timezone = EXCLUDED.timezone,
		     service_windows = EXCLUDED.service_windows,
		     updated_at = now()`,
		rest.ID, rest.Name, rest.Timezone, windows,
	)
	return wrapDBErr(op, err)
}

func (r *CatalogRepo) UpsertSector(ctx context.Context, s domain.Sector) error {
	const op = "postgres.CatalogRepo.UpsertSector"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO sectors(id, restaurant_id, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, updated_at = now()`,
		s.ID, s.RestaurantID, s.Name,
	)
	return wrapDBErr(op, err)
}

// UpsertTables writes the sector tables in one batch; position follows the
// slice order.
func (r *CatalogRepo) UpsertTables(ctx context.Context, tables []domain.Table) error {
	const op = "postgres.CatalogRepo.UpsertTables"

	if len(tables) == 0 {
		return nil
	}

	positions := make(map[string]int)
	batch := &pgx.Batch{}
	for _, t := range tables {
		pos := positions[t.SectorID]
		positions[t.SectorID] = pos + 1

		batch.Queue(
			`INSERT INTO dining_tables(id, sector_id, name, min_size, max_size, position)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name,
			     min_size = EXCLUDED.min_size,
			     max_size = EXCLUDED.max_size,
			     position = EXCLUDED.position,
			     updated_at = now()`,
			t.ID, t.SectorID, t.Name, t.MinSize, t.MaxSize, pos,
		)
	}

	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}
	return nil
}
