package brain

import (
	"cmp"
	"slices"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// Rank drops candidates that cannot seat partySize and orders the rest best
// first. The input slice is left untouched.
func Rank(candidates []domain.Candidate, partySize int) []domain.Candidate {
	ranked := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Capacity.Fits(partySize) {
			ranked = append(ranked, c)
		}
	}

	slices.SortFunc(ranked, CompareCandidates)
	return ranked
}

// Select returns the best candidate for partySize, or false when none fits.
func Select(candidates []domain.Candidate, partySize int) (domain.Candidate, bool) {
	ranked := Rank(candidates, partySize)
	if len(ranked) == 0 {
		return domain.Candidate{}, false
	}
	return ranked[0], true
}

// CompareCandidates orders singles before combos, then fewer tables, less
// waste and earlier start. Table ids and gap end break the remaining ties so
// the order is total.
func CompareCandidates(a, b domain.Candidate) int {
	return cmp.Or(
		cmp.Compare(kindRank(a.Kind), kindRank(b.Kind)),
		cmp.Compare(len(a.TableIDs), len(b.TableIDs)),
		cmp.Compare(a.Waste, b.Waste),
		a.Gap.Start.Compare(b.Gap.Start),
		slices.Compare(a.TableIDs, b.TableIDs),
		a.Gap.End.Compare(b.Gap.End),
	)
}

func kindRank(k domain.CandidateKind) int {
	if k == domain.KindSingle {
		return 0
	}
	return 1
}
