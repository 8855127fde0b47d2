package brain

import "github.com/perzequiel/woki-brain/internal/domain"

func SingleCandidate(t domain.Table, gap domain.TimeGap, partySize int) domain.Candidate {
	capacity := domain.Capacity{Min: t.MinSize, Max: t.MaxSize}
	return domain.Candidate{
		Kind:     domain.KindSingle,
		TableIDs: []string{t.ID},
		Gap:      gap,
		Capacity: capacity,
		Waste:    capacity.Max - partySize,
	}
}

// ComboCandidate treats tables as one unit whose capacity is the elementwise
// sum of its members. Physical adjacency is not considered.
func ComboCandidate(tables []domain.Table, gap domain.TimeGap, partySize int) domain.Candidate {
	ids := make([]string, 0, len(tables))
	var capacity domain.Capacity
	for _, t := range tables {
		ids = append(ids, t.ID)
		capacity.Min += t.MinSize
		capacity.Max += t.MaxSize
	}

	return domain.Candidate{
		Kind:     domain.KindCombo,
		TableIDs: ids,
		Gap:      gap,
		Capacity: capacity,
		Waste:    capacity.Max - partySize,
	}
}
