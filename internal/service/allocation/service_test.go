package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/repository"
	"github.com/perzequiel/woki-brain/internal/repository/memory"
	"github.com/perzequiel/woki-brain/internal/service/discovery"
)

var now = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2025, 10, 22, h, m, 0, 0, time.UTC)
}

type fixture struct {
	store *memory.Store
	locks *memory.LockTable
	idem  *memory.IdempotencyCache
	svc   *Service
}

// wrapFunc lets a test decorate the ledger or the locker the service sees.
type wrapFunc func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker)

func newFixture(t *testing.T, wrap wrapFunc, opts ...Option) *fixture {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Apply(repository.Seed{
		Restaurants: []domain.Restaurant{{
			ID: "R1", Name: "Bistro", Timezone: "UTC",
			ServiceWindows: []domain.ServiceWindow{
				{Start: domain.ClockTime{Hour: 12}, End: domain.ClockTime{Hour: 16}},
				{Start: domain.ClockTime{Hour: 20}, End: domain.ClockTime{Hour: 23, Minute: 45}},
			},
		}},
		Sectors: []domain.Sector{
			{ID: "S1", RestaurantID: "R1", Name: "Main"},
			{ID: "S9", RestaurantID: "R1", Name: "Bar"},
		},
		Tables: []domain.Table{
			{ID: "T1", SectorID: "S1", MinSize: 2, MaxSize: 2},
			{ID: "T2", SectorID: "S1", MinSize: 2, MaxSize: 2},
			{ID: "T3", SectorID: "S1", MinSize: 2, MaxSize: 4},
			{ID: "B1", SectorID: "S9", MinSize: 2, MaxSize: 4},
		},
	}))

	f := &fixture{
		store: store,
		locks: memory.NewLockTable(nil),
		idem:  memory.NewIdempotencyCache(nil),
	}

	var (
		ledger repository.Ledger = store
		locks  repository.Locker = f.locks
	)
	if wrap != nil {
		ledger, locks = wrap(store, f.locks)
	}

	var seq atomic.Int64
	opts = append([]Option{
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return fmt.Sprintf("bk-%d", seq.Add(1)) }),
	}, opts...)

	f.svc = New(discovery.New(store, ledger, nil), ledger, locks, f.idem, nil, Config{}, opts...)
	return f
}

func request(key string) Request {
	return Request{
		Query: discovery.Query{
			RestaurantID:    "R1",
			SectorID:        "S1",
			Date:            "2025-10-22",
			PartySize:       3,
			DurationMinutes: 90,
		},
		IdempotencyKey: key,
	}
}

func TestAllocate_BooksBestCandidate(t *testing.T) {
	f := newFixture(t, nil)

	b, err := f.svc.Allocate(context.Background(), request("k1"))
	require.NoError(t, err)

	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, "R1", b.RestaurantID)
	assert.Equal(t, "S1", b.SectorID)
	assert.Equal(t, []string{"T3"}, b.TableIDs)
	assert.Equal(t, 3, b.PartySize)
	assert.True(t, b.Start.Equal(at(12, 0)))
	assert.True(t, b.End.Equal(at(13, 30)))
	assert.Equal(t, 90, b.DurationMinutes)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, now, b.CreatedAt)

	assert.Equal(t, 1, f.store.Len())
	assert.False(t, f.locks.Held(LockKey("R1", "S1", []string{"T3"}, at(12, 0))))

	next, err := f.svc.Allocate(context.Background(), request("k2"))
	require.NoError(t, err)
	assert.True(t, next.Start.Equal(at(13, 30)), "second booking takes the next free slot")
}

func TestAllocate_IdempotentReplay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.Allocate(ctx, request("same"))
	require.NoError(t, err)

	second, err := f.svc.Allocate(ctx, request("same"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.store.Len())

	// a hit is returned verbatim, whatever else the request now says
	changed := request("same")
	changed.PartySize = 2
	changed.SectorID = "S9"
	third, err := f.svc.Allocate(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, f.store.Len())
}

func TestAllocate_ValidatesInput(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"blank key", func(r *Request) { r.IdempotencyKey = "  " }},
		{"zero party", func(r *Request) { r.PartySize = 0 }},
		{"short duration", func(r *Request) { r.DurationMinutes = 15 }},
		{"off-grid duration", func(r *Request) { r.DurationMinutes = 50 }},
		{"bad date", func(r *Request) { r.Date = "tomorrow" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := request("k")
			tt.mutate(&r)

			_, err := f.svc.Allocate(context.Background(), r)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, domain.CodeInvalidInput, domain.Code(err))
		})
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestAllocate_NotFoundAndNoCapacity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	r := request("k1")
	r.RestaurantID = "nope"
	_, err := f.svc.Allocate(ctx, r)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r = request("k2")
	r.PartySize = 30
	_, err = f.svc.Allocate(ctx, r)
	assert.ErrorIs(t, err, domain.ErrNoCapacity)

	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 0, f.idem.Len())
}

func TestAllocate_LockHeldFailsFast(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	key := LockKey("R1", "S1", []string{"T3"}, at(12, 0))
	_, ok, err := f.locks.TryAcquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Allocate(ctx, request("k1"))
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Equal(t, domain.CodeConflict, domain.Code(err))
	assert.Equal(t, 0, f.store.Len())
	assert.True(t, f.locks.Held(key), "a lock owned by someone else stays held")
}

// racingLocker lands a competing booking between discovery and the slot lock.
type racingLocker struct {
	*memory.LockTable
	store *memory.Store
}

func (l racingLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if strings.HasPrefix(key, KeyLock("")) {
		return l.LockTable.TryAcquire(ctx, key, ttl)
	}
	if _, err := l.store.Append(ctx, domain.Booking{
		ID: "rival", RestaurantID: "R1", SectorID: "S1", TableIDs: []string{"T3"},
		PartySize: 2, Start: at(12, 30), End: at(14, 0), DurationMinutes: 90,
		Status: domain.BookingConfirmed,
	}); err != nil {
		return "", false, err
	}
	return l.LockTable.TryAcquire(ctx, key, ttl)
}

func TestAllocate_RevalidationCollision(t *testing.T) {
	f := newFixture(t, func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker) {
		return store, racingLocker{LockTable: locks, store: store}
	})

	_, err := f.svc.Allocate(context.Background(), request("k1"))
	assert.ErrorIs(t, err, ErrCollision)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, 1, f.store.Len(), "only the rival booking is stored")
	assert.False(t, f.locks.Held(LockKey("R1", "S1", []string{"T3"}, at(12, 0))))
	assert.Equal(t, 0, f.idem.Len())
}

type failingLedger struct {
	*memory.Store
	err error
}

func (l failingLedger) Append(context.Context, domain.Booking) (domain.Booking, error) {
	return domain.Booking{}, l.err
}

func TestAllocate_ReleasesLockOnAppendFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	f := newFixture(t, func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker) {
		return failingLedger{Store: store, err: boom}, locks
	})

	_, err := f.svc.Allocate(context.Background(), request("k1"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.CodeInternal, domain.Code(err))
	assert.False(t, f.locks.Held(LockKey("R1", "S1", []string{"T3"}, at(12, 0))))
	assert.Equal(t, 0, f.idem.Len())
}

func TestAllocate_LedgerConflictIsConflict(t *testing.T) {
	f := newFixture(t, func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker) {
		return failingLedger{Store: store, err: fmt.Errorf("append:%w", repository.ErrConflict)}, locks
	})

	_, err := f.svc.Allocate(context.Background(), request("k1"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// onAppendLedger calls after once a booking is stored, before Allocate
// records the idempotency key.
type onAppendLedger struct {
	*memory.Store
	after func(ctx context.Context)
}

func (l onAppendLedger) Append(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	saved, err := l.Store.Append(ctx, b)
	if err == nil && l.after != nil {
		l.after(ctx)
	}
	return saved, err
}

func TestAllocate_SameKeyRetryDuringCommit(t *testing.T) {
	var (
		f        *fixture
		retryErr error
	)
	f = newFixture(t, func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker) {
		return onAppendLedger{Store: store, after: func(ctx context.Context) {
			_, retryErr = f.svc.Allocate(ctx, request("same"))
		}}, locks
	})
	ctx := context.Background()

	first, err := f.svc.Allocate(ctx, request("same"))
	require.NoError(t, err)

	assert.ErrorIs(t, retryErr, ErrKeyInFlight)
	assert.Equal(t, domain.CodeConflict, domain.Code(retryErr))
	assert.Equal(t, 1, f.store.Len(), "the retry must not book a second table")
	assert.False(t, f.locks.Held(KeyLock("same")))

	again, err := f.svc.Allocate(ctx, request("same"))
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, f.store.Len())
}

func TestAllocate_SlowCommitKeepsSuccessorLock(t *testing.T) {
	lockNow := now
	locks := memory.NewLockTable(func() time.Time { return lockNow })
	slotKey := LockKey("R1", "S1", []string{"T3"}, at(12, 0))
	successor := false

	f := newFixture(t, func(store *memory.Store, _ *memory.LockTable) (repository.Ledger, repository.Locker) {
		return onAppendLedger{Store: store, after: func(ctx context.Context) {
			// the commit outlives the lock ttl and someone else takes the slot
			lockNow = lockNow.Add(6 * time.Second)
			_, successor, _ = locks.TryAcquire(ctx, slotKey, time.Minute)
		}}, locks
	})

	_, err := f.svc.Allocate(context.Background(), request("k1"))
	require.NoError(t, err)

	require.True(t, successor)
	assert.True(t, locks.Held(slotKey), "the stale holder must leave the new lock alone")
}

// blockingLedger parks Append until release is closed.
type blockingLedger struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (l blockingLedger) Append(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	close(l.entered)
	<-l.release
	return l.Store.Append(ctx, b)
}

func TestAllocate_ConcurrentSameCandidate(t *testing.T) {
	ledger := blockingLedger{entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, func(store *memory.Store, locks *memory.LockTable) (repository.Ledger, repository.Locker) {
		ledger.Store = store
		return ledger, locks
	})
	ctx := context.Background()

	type result struct {
		b   domain.Booking
		err error
	}
	first := make(chan result, 1)
	go func() {
		b, err := f.svc.Allocate(ctx, request("first"))
		first <- result{b, err}
	}()

	<-ledger.entered
	_, err := f.svc.Allocate(ctx, request("second"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(ledger.release)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, []string{"T3"}, res.b.TableIDs)
	assert.Equal(t, 1, f.store.Len())
}

func TestAllocate_ConcurrentRequestsNeverOverlap(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		booked []domain.Booking
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r := request(fmt.Sprintf("key-%d", i))
			r.SectorID = "S9"
			b, err := f.svc.Allocate(ctx, r)
			if err != nil {
				code := domain.Code(err)
				assert.True(t, code == domain.CodeConflict || code == domain.CodeNoCapacity, "unexpected %v", err)
				return
			}
			mu.Lock()
			booked = append(booked, b)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.NotEmpty(t, booked)
	assert.Equal(t, len(booked), f.store.Len())
	for i := range booked {
		for j := i + 1; j < len(booked); j++ {
			a, b := booked[i], booked[j]
			overlap := a.Start.Before(b.End) && b.Start.Before(a.End)
			assert.False(t, overlap, "%s and %s overlap", a.ID, b.ID)
		}
	}
}

func TestAllocate_HooksRunAfterCommit(t *testing.T) {
	var calls []string
	f := newFixture(t, nil, WithHooks(
		Hook{Name: "broken", Run: func(context.Context, domain.Booking, string) error {
			calls = append(calls, "broken")
			return errors.New("redis down")
		}},
		Hook{Name: "record", Run: func(_ context.Context, b domain.Booking, date string) error {
			calls = append(calls, b.ID+"@"+date)
			return nil
		}},
	))

	_, err := f.svc.Allocate(context.Background(), request("k1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "bk-1@2025-10-22"}, calls)

	calls = nil
	_, err = f.svc.Allocate(context.Background(), request("k1"))
	require.NoError(t, err)
	assert.Empty(t, calls, "replays do not fire hooks")

	r := request("k2")
	r.PartySize = 40
	_, err = f.svc.Allocate(context.Background(), r)
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestLockKey(t *testing.T) {
	start := time.Date(2025, 10, 22, 20, 0, 0, 0, time.FixedZone("ART", -3*60*60))

	key := LockKey("R1", "S1", []string{"T3", "T1", "T2"}, start)
	assert.Equal(t, "R1|S1|T1+T2+T3|2025-10-22T23:00:00Z", key)
	assert.Equal(t, key, LockKey("R1", "S1", []string{"T2", "T3", "T1"}, start.UTC()))
	assert.NotEqual(t, key, LockKey("R1", "S1", []string{"T1", "T2", "T3"}, start.Add(15*time.Minute)))
}
