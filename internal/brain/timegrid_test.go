package brain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perzequiel/woki-brain/internal/domain"
)

func TestAlignDown(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"aligned", at(20, 0), at(20, 0)},
		{"inside quarter", at(20, 14), at(20, 0)},
		{"drops seconds", time.Date(2025, 10, 22, 20, 30, 59, 999, time.UTC), at(20, 30)},
		{"last quarter", at(23, 59), at(23, 45)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(AlignDown(tt.in)), "got %s", AlignDown(tt.in))
		})
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"aligned is a no-op", at(20, 15), at(20, 15)},
		{"rounds to next quarter", at(20, 1), at(20, 15)},
		{"seconds push to next quarter", time.Date(2025, 10, 22, 20, 15, 1, 0, time.UTC), at(20, 30)},
		{"end of day rolls to midnight", time.Date(2025, 10, 22, 23, 59, 59, 0, time.UTC), at(24, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignUp(tt.in)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.True(t, IsAligned(got))
		})
	}
}

func TestValidateDuration(t *testing.T) {
	for _, ok := range []int{30, 45, 90, 180} {
		assert.NoError(t, ValidateDuration(ok), "duration %d", ok)
	}

	for _, bad := range []int{0, 15, 29, 31, 100, 195, -30} {
		err := ValidateDuration(bad)
		require.Error(t, err, "duration %d", bad)
		assert.ErrorIs(t, err, ErrInvalidDuration)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)

	day, err := ParseDay("2025-10-22", loc)
	require.NoError(t, err)

	start, end := DayBounds(day)
	assert.True(t, time.Date(2025, 10, 22, 0, 0, 0, 0, loc).Equal(start), "start %s", start)
	assert.True(t, time.Date(2025, 10, 23, 0, 0, 0, 0, loc).Equal(end), "end %s", end)
}

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("22/10/2025", time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSameDayUsesDayLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	day := time.Date(2025, 10, 22, 0, 0, 0, 0, loc)

	// 01:30 UTC on the 23rd is 22:30 on the 22nd in Buenos Aires.
	assert.True(t, SameDay(time.Date(2025, 10, 23, 1, 30, 0, 0, time.UTC), day))
	assert.False(t, SameDay(time.Date(2025, 10, 23, 3, 0, 0, 0, time.UTC), day))
}
