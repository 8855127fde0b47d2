package brain

import (
	"fmt"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

const DefaultLimit = 10

type DiscoverRequest struct {
	Query

	// Tables in catalog order; combos only join neighbours in this order.
	Tables    []domain.Table
	Bookings  []domain.Booking
	PartySize int

	WindowStart *domain.ClockTime
	WindowEnd   *domain.ClockTime
	Limit       int
}

// Slot is a ranked candidate together with the interval a booking on it
// would occupy.
type Slot struct {
	Candidate domain.Candidate
	Start     time.Time
	End       time.Time
}

type DiscoverResult struct {
	SlotGranularityMinutes int
	DurationMinutes        int
	Slots                  []Slot
}

// Discover lists where and when the party can be seated, best first.
func Discover(req DiscoverRequest) (DiscoverResult, error) {
	candidates, err := Candidates(req)
	if err != nil {
		return DiscoverResult{}, err
	}

	ranked := Rank(candidates, req.PartySize)
	if len(ranked) == 0 {
		return DiscoverResult{}, fmt.Errorf("%w: no table fits a party of %d", domain.ErrNoCapacity, req.PartySize)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	slots := make([]Slot, 0, len(ranked))
	for _, c := range ranked {
		start, end := SlotBounds(c, req.DurationMinutes)
		slots = append(slots, Slot{Candidate: c, Start: start, End: end})
	}

	return DiscoverResult{
		SlotGranularityMinutes: GranularityMinutes,
		DurationMinutes:        req.DurationMinutes,
		Slots:                  slots,
	}, nil
}

// SlotBounds is the interval a booking placed on c occupies: the start of its
// gap plus the duration.
func SlotBounds(c domain.Candidate, durationMinutes int) (time.Time, time.Time) {
	return c.Gap.Start, c.Gap.Start.Add(time.Duration(durationMinutes) * time.Minute)
}

// Candidates builds every single-table candidate and every candidate of
// tables contiguous in catalog order, sizes 2..N. Capacity is not filtered.
func Candidates(req DiscoverRequest) ([]domain.Candidate, error) {
	if err := ValidateInput(req.PartySize, req.DurationMinutes); err != nil {
		return nil, err
	}

	window, err := requestWindow(req)
	if err != nil {
		return nil, err
	}

	perTable := make([][]domain.TimeGap, len(req.Tables))
	for i, t := range req.Tables {
		gaps, err := FindGaps(t, req.Bookings, req.Query)
		if err != nil {
			return nil, err
		}
		perTable[i] = gaps
	}

	need := req.duration()

	var out []domain.Candidate
	for i, t := range req.Tables {
		for _, g := range narrow(perTable[i], window, need) {
			out = append(out, SingleCandidate(t, g, req.PartySize))
		}
	}

	for size := 2; size <= len(req.Tables); size++ {
		for i := 0; i+size <= len(req.Tables); i++ {
			gaps := intersectAll(perTable[i:i+size], need)
			for _, g := range narrow(gaps, window, need) {
				out = append(out, ComboCandidate(req.Tables[i:i+size], g, req.PartySize))
			}
		}
	}

	return out, nil
}

// ValidateInput checks the party size and duration of a request.
func ValidateInput(partySize, durationMinutes int) error {
	if partySize <= 0 {
		return fmt.Errorf("%w: party size must be positive, got %d", domain.ErrInvalidInput, partySize)
	}
	return ValidateDuration(durationMinutes)
}

// requestWindow resolves the optional request window on the query day and
// checks it against the service windows.
func requestWindow(req DiscoverRequest) (*domain.TimeGap, error) {
	if req.WindowStart == nil && req.WindowEnd == nil {
		return nil, nil
	}

	day := req.day()
	start, end := DayBounds(day)
	if req.WindowStart != nil {
		start = req.WindowStart.On(day)
	}
	if req.WindowEnd != nil {
		end = req.WindowEnd.On(day)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: window start %s is not before window end %s",
			domain.ErrInvalidInput, start.Format("15:04"), end.Format("15:04"))
	}

	if len(req.ServiceWindows) > 0 {
		inside := false
		for _, w := range req.ServiceWindows {
			ws, we := windowInstants(day, w)
			if ws.Before(end) && we.After(start) {
				inside = true
				break
			}
		}
		if !inside {
			return nil, fmt.Errorf("%w: %s-%s", domain.ErrOutsideServiceWindow, start.Format("15:04"), end.Format("15:04"))
		}
	}

	return &domain.TimeGap{Start: AlignUp(start), End: AlignDown(end)}, nil
}

// narrow clips gaps to the request window and drops what no longer fits.
func narrow(gaps []domain.TimeGap, window *domain.TimeGap, need time.Duration) []domain.TimeGap {
	if window == nil {
		return gaps
	}

	var out []domain.TimeGap
	for _, g := range gaps {
		clipped := domain.TimeGap{
			Start: maxTime(g.Start, window.Start),
			End:   minTime(g.End, window.End),
		}
		if clipped.Duration() >= need {
			out = append(out, clipped)
		}
	}
	return out
}
