// Package brain holds the seat discovery engine: grid alignment, per-table
// gap finding, multi-table intersection, candidate construction and the
// selection policy. Everything here is pure and safe for concurrent use.
package brain

import (
	"fmt"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

const (
	GranularityMinutes = 15
	MinDurationMinutes = 30
	MaxDurationMinutes = 180

	Granularity = GranularityMinutes * time.Minute
)

// ErrInvalidDuration reports a duration off the grid or out of range.
var ErrInvalidDuration = fmt.Errorf(
	"%w: duration must be a multiple of %d between %d and %d minutes",
	domain.ErrInvalidInput, GranularityMinutes, MinDurationMinutes, MaxDurationMinutes,
)

// AlignDown truncates t to the previous grid line.
func AlignDown(t time.Time) time.Time {
	y, mo, d := t.Date()
	m := t.Minute() - t.Minute()%GranularityMinutes
	return time.Date(y, mo, d, t.Hour(), m, 0, 0, t.Location())
}

// AlignUp rounds t to the next grid line. Aligned instants are returned as is.
func AlignUp(t time.Time) time.Time {
	down := AlignDown(t)
	if down.Equal(t) {
		return down
	}
	return down.Add(Granularity)
}

func IsAligned(t time.Time) bool {
	return t.Minute()%GranularityMinutes == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func ValidateDuration(minutes int) error {
	if minutes%GranularityMinutes != 0 || minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}
	return nil
}

// DayBounds returns the half-open service day [00:00, next 00:00) of day.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := AlignDown(time.Date(y, m, d, 0, 0, 0, 0, day.Location()))
	end := AlignUp(time.Date(y, m, d, 23, 59, 59, 0, day.Location()))
	return start, end
}

// ParseDay parses "2006-01-02" as local midnight in loc.
func ParseDay(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", domain.ErrInvalidInput, date, err)
	}
	return day, nil
}

// SameDay reports whether t falls on the calendar day of day, evaluated in day's location.
func SameDay(t, day time.Time) bool {
	ty, tm, td := t.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}
