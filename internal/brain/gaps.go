package brain

import (
	"slices"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// Query describes the day and duration a gap search runs against.
type Query struct {
	// Day carries the target calendar date; only its year, month and day are used.
	Day             time.Time
	DurationMinutes int
	ServiceWindows  []domain.ServiceWindow
	// Location is the restaurant timezone. Nil means Day's own location.
	Location *time.Location
}

func (q Query) location() *time.Location {
	if q.Location != nil {
		return q.Location
	}
	return q.Day.Location()
}

// day returns local midnight of the target date.
func (q Query) day() time.Time {
	y, m, d := q.Day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, q.location())
}

func (q Query) duration() time.Duration {
	return time.Duration(q.DurationMinutes) * time.Minute
}

// FindGaps returns the grid-aligned free intervals of table on the query day
// that are at least the requested duration long, ordered by start.
func FindGaps(table domain.Table, bookings []domain.Booking, q Query) ([]domain.TimeGap, error) {
	if err := ValidateDuration(q.DurationMinutes); err != nil {
		return nil, err
	}

	day := q.day()
	busy := busyIntervals(table.ID, bookings, day)

	var gaps []domain.TimeGap
	for _, bounds := range serviceBounds(day, q.ServiceWindows) {
		gaps = append(gaps, sweep(bounds, busy)...)
	}

	gaps = longerThan(gaps, q.duration())

	if len(q.ServiceWindows) > 0 {
		gaps = withinWindows(gaps, day, q.ServiceWindows)
	}

	slices.SortFunc(gaps, compareGaps)
	return slices.CompactFunc(gaps, sameGap), nil
}

// busyIntervals collects the aligned intervals of confirmed bookings of
// tableID starting on day, sorted by start.
func busyIntervals(tableID string, bookings []domain.Booking, day time.Time) []domain.TimeGap {
	loc := day.Location()

	var busy []domain.TimeGap
	for _, b := range bookings {
		if b.Status != domain.BookingConfirmed || !b.UsesTable(tableID) || !SameDay(b.Start, day) {
			continue
		}
		busy = append(busy, domain.TimeGap{
			Start: AlignDown(b.Start.In(loc)),
			End:   AlignDown(b.End.In(loc)),
		})
	}

	slices.SortFunc(busy, compareGaps)
	return busy
}

// serviceBounds returns the intervals the sweep runs over: the whole day, or
// each service window aligned inward.
func serviceBounds(day time.Time, windows []domain.ServiceWindow) []domain.TimeGap {
	dayStart, dayEnd := DayBounds(day)
	if len(windows) == 0 {
		return []domain.TimeGap{{Start: dayStart, End: dayEnd}}
	}

	out := make([]domain.TimeGap, 0, len(windows))
	for _, w := range windows {
		start, end := windowInstants(day, w)
		start, end = AlignUp(start), AlignDown(end)
		if start.Before(end) {
			out = append(out, domain.TimeGap{Start: start, End: end})
		}
	}
	return out
}

// windowInstants places w on day. A window whose end is not after its start
// runs to the end of the day.
func windowInstants(day time.Time, w domain.ServiceWindow) (time.Time, time.Time) {
	start, end := w.Start.On(day), w.End.On(day)
	if !end.After(start) {
		_, end = DayBounds(day)
	}
	return start, end
}

func sweep(bounds domain.TimeGap, busy []domain.TimeGap) []domain.TimeGap {
	var gaps []domain.TimeGap

	cursor := bounds.Start
	for _, b := range busy {
		if !cursor.Before(bounds.End) {
			return gaps
		}
		if b.Start.After(cursor) {
			end := minTime(b.Start, bounds.End)
			gaps = append(gaps, domain.TimeGap{Start: cursor, End: end})
		}
		cursor = maxTime(cursor, b.End)
	}

	if cursor.Before(bounds.End) {
		gaps = append(gaps, domain.TimeGap{Start: cursor, End: bounds.End})
	}

	return gaps
}

func longerThan(gaps []domain.TimeGap, d time.Duration) []domain.TimeGap {
	out := gaps[:0]
	for _, g := range gaps {
		if g.Duration() >= d {
			out = append(out, g)
		}
	}
	return out
}

// withinWindows keeps gaps fully inside at least one window. Partial overlap
// is rejected, never clipped.
func withinWindows(gaps []domain.TimeGap, day time.Time, windows []domain.ServiceWindow) []domain.TimeGap {
	out := gaps[:0]
	for _, g := range gaps {
		for _, w := range windows {
			start, end := windowInstants(day, w)
			if !g.Start.Before(start) && !g.End.After(end) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func compareGaps(a, b domain.TimeGap) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.End.Compare(b.End)
}

func sameGap(a, b domain.TimeGap) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
