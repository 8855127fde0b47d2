package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
	"github.com/perzequiel/woki-brain/internal/repository/memory"
	redisrepo "github.com/perzequiel/woki-brain/internal/repository/redis"
)

func at(h, m int) time.Time {
	return time.Date(2025, 10, 22, h, m, 0, 0, time.UTC)
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()

	s := memory.NewStore()
	require.NoError(t, s.Apply(repository.Seed{
		Restaurants: []domain.Restaurant{
			{ID: "R1", Name: "Bistro", Timezone: "UTC"},
			{ID: "R2", Name: "Other", Timezone: "UTC"},
		},
		Sectors: []domain.Sector{
			{ID: "S1", RestaurantID: "R1", Name: "Main"},
			{ID: "S2", RestaurantID: "R1", Name: "Patio"},
			{ID: "X1", RestaurantID: "R2", Name: "Elsewhere"},
		},
		Tables: []domain.Table{
			{ID: "T1", SectorID: "S1", MinSize: 2, MaxSize: 4},
			{ID: "P1", SectorID: "S2", MinSize: 2, MaxSize: 4},
		},
		Bookings: []domain.Booking{
			{ID: "B2", RestaurantID: "R1", SectorID: "S2", TableIDs: []string{"P1"}, PartySize: 2, Start: at(20, 0), End: at(21, 30)},
			{ID: "B1", RestaurantID: "R1", SectorID: "S1", TableIDs: []string{"T1"}, PartySize: 2, Start: at(12, 0), End: at(13, 0)},
			{ID: "B3", RestaurantID: "R1", SectorID: "S1", TableIDs: []string{"T1"}, PartySize: 2, Start: at(12, 0).AddDate(0, 0, 1), End: at(13, 0).AddDate(0, 0, 1)},
		},
	}))
	return s
}

func ids(items []domain.Booking) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func TestListDay_WithoutCache(t *testing.T) {
	store := newStore(t)
	svc := New(store, store, nil, nil, Config{})
	ctx := context.Background()

	day, err := svc.ListDay(ctx, "R1", "", "2025-10-22")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-22", day.Date)
	assert.Equal(t, []string{"B1", "B2"}, ids(day.Items))

	day, err = svc.ListDay(ctx, "R1", "S2", "2025-10-22")
	require.NoError(t, err)
	assert.Equal(t, []string{"B2"}, ids(day.Items))

	day, err = svc.ListDay(ctx, "R1", "S1", "2025-10-21")
	require.NoError(t, err)
	assert.Empty(t, day.Items)
	assert.NotNil(t, day.Items)

	require.NoError(t, svc.Invalidate(ctx, "R1", "2025-10-22"))
}

func TestListDay_Errors(t *testing.T) {
	store := newStore(t)
	svc := New(store, store, nil, nil, Config{})
	ctx := context.Background()

	_, err := svc.ListDay(ctx, "nope", "", "2025-10-22")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ListDay(ctx, "R1", "X1", "2025-10-22")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ListDay(ctx, "R1", "missing", "2025-10-22")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ListDay(ctx, "R1", "", "22-10-2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListDay_CachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newStore(t)
	svc := New(store, store, redisrepo.NewDayCache(rdb, nil), nil, Config{DayTTL: time.Minute})
	ctx := context.Background()

	day, err := svc.ListDay(ctx, "R1", "", "2025-10-22")
	require.NoError(t, err)
	require.Len(t, day.Items, 2)
	assert.True(t, mr.Exists(redisrepo.KeyBookingsDay("R1", "2025-10-22")))

	_, err = store.Append(ctx, domain.Booking{
		ID: "B4", RestaurantID: "R1", SectorID: "S1", TableIDs: []string{"T1"},
		PartySize: 2, Start: at(18, 0), End: at(19, 0), Status: domain.BookingConfirmed,
	})
	require.NoError(t, err)

	stale, err := svc.ListDay(ctx, "R1", "", "2025-10-22")
	require.NoError(t, err)
	assert.Len(t, stale.Items, 2)

	require.NoError(t, svc.Invalidate(ctx, "R1", "2025-10-22"))

	fresh, err := svc.ListDay(ctx, "R1", "", "2025-10-22")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B4", "B2"}, ids(fresh.Items))
}
