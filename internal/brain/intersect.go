package brain

import (
	"fmt"
	"slices"
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// IntersectGaps returns the intervals where every table of the set is free at
// once for at least the requested duration. Each table must individually
// offer a long-enough gap.
func IntersectGaps(tables []domain.Table, bookings []domain.Booking, q Query) ([]domain.TimeGap, error) {
	if err := ValidateDuration(q.DurationMinutes); err != nil {
		return nil, err
	}
	if len(tables) < 2 {
		return nil, fmt.Errorf("%w: intersection needs at least two tables, got %d", domain.ErrInvalidInput, len(tables))
	}

	perTable := make([][]domain.TimeGap, 0, len(tables))
	for _, t := range tables {
		gaps, err := FindGaps(t, bookings, q)
		if err != nil {
			return nil, err
		}
		if len(gaps) == 0 {
			return nil, nil
		}
		perTable = append(perTable, gaps)
	}

	return intersectAll(perTable, q.duration()), nil
}

// intersectAll folds per-table gap lists pairwise, merging after every step.
func intersectAll(perTable [][]domain.TimeGap, need time.Duration) []domain.TimeGap {
	for _, gaps := range perTable {
		if len(gaps) == 0 {
			return nil
		}
	}

	acc := perTable[0]
	for _, next := range perTable[1:] {
		acc = mergeGaps(intersectPair(acc, next))
		if len(acc) == 0 {
			return nil
		}
	}

	return longerThan(slices.Clone(acc), need)
}

func intersectPair(a, b []domain.TimeGap) []domain.TimeGap {
	var out []domain.TimeGap
	for _, x := range a {
		for _, y := range b {
			start := maxTime(x.Start, y.Start)
			end := minTime(x.End, y.End)
			if start.Before(end) {
				out = append(out, domain.TimeGap{Start: start, End: end})
			}
		}
	}
	return out
}

// mergeGaps joins intervals that overlap or touch.
func mergeGaps(gaps []domain.TimeGap) []domain.TimeGap {
	if len(gaps) == 0 {
		return nil
	}

	sorted := slices.Clone(gaps)
	slices.SortFunc(sorted, compareGaps)

	out := []domain.TimeGap{sorted[0]}
	for _, g := range sorted[1:] {
		last := &out[len(out)-1]
		if !last.End.Before(g.Start) {
			last.End = maxTime(last.End, g.End)
			continue
		}
		out = append(out, g)
	}
	return out
}
