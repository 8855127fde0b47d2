package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS restaurants (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	service_windows JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sectors (
	id TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dining_tables (
	id TEXT PRIMARY KEY,
	sector_id TEXT NOT NULL REFERENCES sectors(id) ON DELETE CASCADE,
	name TEXT NOT NULL DEFAULT '',
	min_size INT NOT NULL CHECK (min_size > 0),
	max_size INT NOT NULL,
	position INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (min_size <= max_size)
);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id),
	sector_id TEXT NOT NULL REFERENCES sectors(id),
	party_size INT NOT NULL CHECK (party_size > 0),
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	duration_minutes INT NOT NULL,
	status TEXT NOT NULL DEFAULT 'CONFIRMED',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_at < end_at)
);

CREATE TABLE IF NOT EXISTS booking_tables (
	booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
	table_id TEXT NOT NULL REFERENCES dining_tables(id),
	position INT NOT NULL,
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (booking_id, table_id)
);

CREATE INDEX IF NOT EXISTS idx_dining_tables_sector_position ON dining_tables(sector_id, position);
CREATE INDEX IF NOT EXISTS idx_bookings_restaurant_start ON bookings(restaurant_id, start_at);
CREATE INDEX IF NOT EXISTS idx_booking_tables_table_start ON booking_tables(table_id, start_at);
`

// Migrate creates the schema when missing. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const op = "postgres.Migrate"

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
