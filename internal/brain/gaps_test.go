package brain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perzequiel/woki-brain/internal/domain"
)

func TestFindGaps_NoBookingsIsWholeDay(t *testing.T) {
	gaps, err := FindGaps(table("T1", 2, 4), nil, query(90))
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeGap{gap(at(0, 0), at(24, 0))}, gaps)
}

func TestFindGaps_AroundBooking(t *testing.T) {
	bookings := []domain.Booking{booking("B1", at(20, 0), at(21, 30), "T1")}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(90))
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeGap{
		gap(at(0, 0), at(20, 0)),
		gap(at(21, 30), at(24, 0)),
	}, gaps)
}

func TestFindGaps_TouchingBookingsLeaveNoGap(t *testing.T) {
	bookings := []domain.Booking{
		booking("B2", at(21, 30), at(23, 0), "T1"),
		booking("B1", at(20, 0), at(21, 30), "T1"),
	}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(30))
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeGap{
		gap(at(0, 0), at(20, 0)),
		gap(at(23, 0), at(24, 0)),
	}, gaps)
}

func TestFindGaps_DropsShortGaps(t *testing.T) {
	bookings := []domain.Booking{
		booking("B1", at(12, 0), at(13, 0), "T1"),
		booking("B2", at(14, 0), at(15, 0), "T1"),
	}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(90))
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeGap{
		gap(at(0, 0), at(12, 0)),
		gap(at(15, 0), at(24, 0)),
	}, gaps)
}

func TestFindGaps_IgnoresOtherTablesCancelledAndOtherDays(t *testing.T) {
	cancelled := booking("B2", at(10, 0), at(11, 0), "T1")
	cancelled.Status = domain.BookingCancelled

	bookings := []domain.Booking{
		booking("B1", at(10, 0), at(11, 0), "T2"),
		cancelled,
		booking("B3", at(24+10, 0), at(24+11, 0), "T1"),
	}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(60))
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeGap{gap(at(0, 0), at(24, 0))}, gaps)
}

func TestFindGaps_AlignsBookingsDown(t *testing.T) {
	bookings := []domain.Booking{booking("B1", at(12, 10), at(13, 20), "T1")}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(30))
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	assert.Equal(t, at(12, 0), gaps[0].End)
	assert.Equal(t, at(13, 15), gaps[1].Start)
}

func TestFindGaps_ServiceWindows(t *testing.T) {
	windows := []domain.ServiceWindow{window(12, 0, 16, 0), window(20, 0, 23, 45)}

	t.Run("unbooked day spans each window", func(t *testing.T) {
		gaps, err := FindGaps(table("T1", 2, 4), nil, query(90, windows...))
		require.NoError(t, err)
		assert.Equal(t, []domain.TimeGap{
			gap(at(12, 0), at(16, 0)),
			gap(at(20, 0), at(23, 45)),
		}, gaps)
	})

	t.Run("bookings split a window", func(t *testing.T) {
		bookings := []domain.Booking{booking("B1", at(20, 0), at(21, 30), "T1")}

		gaps, err := FindGaps(table("T1", 2, 4), bookings, query(90, windows...))
		require.NoError(t, err)
		assert.Equal(t, []domain.TimeGap{
			gap(at(12, 0), at(16, 0)),
			gap(at(21, 30), at(23, 45)),
		}, gaps)
	})

	t.Run("off-grid window edges align inward", func(t *testing.T) {
		gaps, err := FindGaps(table("T1", 2, 4), nil, query(60, window(12, 10, 13, 50)))
		require.NoError(t, err)
		assert.Equal(t, []domain.TimeGap{gap(at(12, 15), at(13, 45))}, gaps)
	})

	t.Run("window shorter than duration yields nothing", func(t *testing.T) {
		gaps, err := FindGaps(table("T1", 2, 4), nil, query(90, window(12, 0, 13, 0)))
		require.NoError(t, err)
		assert.Empty(t, gaps)
	})
}

func TestFindGaps_InvalidDurationFailsFast(t *testing.T) {
	_, err := FindGaps(table("T1", 2, 4), nil, query(100))
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestFindGaps_TimezoneDay(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	q := Query{Day: time.Date(2025, 10, 22, 0, 0, 0, 0, loc), DurationMinutes: 60, Location: loc}

	// Stored in UTC: 23:00-00:30 UTC is 20:00-21:30 local.
	bookings := []domain.Booking{booking("B1",
		time.Date(2025, 10, 22, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 23, 0, 30, 0, 0, time.UTC),
		"T1",
	)}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, q)
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	assert.True(t, gaps[0].End.Equal(time.Date(2025, 10, 22, 20, 0, 0, 0, loc)))
	assert.True(t, gaps[1].Start.Equal(time.Date(2025, 10, 22, 21, 30, 0, 0, loc)))
}

func TestFindGaps_GridAligned(t *testing.T) {
	bookings := []domain.Booking{
		booking("B1", at(9, 7), at(10, 52), "T1"),
		booking("B2", at(13, 33), at(15, 1), "T1"),
	}

	gaps, err := FindGaps(table("T1", 2, 4), bookings, query(45, window(8, 5, 22, 50)))
	require.NoError(t, err)
	require.NotEmpty(t, gaps)
	for _, g := range gaps {
		assert.True(t, IsAligned(g.Start), "start %s", g.Start)
		assert.True(t, IsAligned(g.End), "end %s", g.End)
		assert.GreaterOrEqual(t, g.Duration(), 45*time.Minute)
	}
}
