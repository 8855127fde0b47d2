package httpgin

import (
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/service/discovery"
)

type DiscoverQuery struct {
	RestaurantID    string `form:"restaurantId" binding:"required"`
	SectorID        string `form:"sectorId" binding:"required"`
	Date            string `form:"date" binding:"required"`
	PartySize       int    `form:"partySize"`
	DurationMinutes int    `form:"duration"`
	WindowStart     string `form:"windowStart"`
	WindowEnd       string `form:"windowEnd"`
	Limit           int    `form:"limit"`
}

func (q DiscoverQuery) toQuery() discovery.Query {
	return discovery.Query{
		RestaurantID:    q.RestaurantID,
		SectorID:        q.SectorID,
		Date:            q.Date,
		PartySize:       q.PartySize,
		DurationMinutes: q.DurationMinutes,
		WindowStart:     q.WindowStart,
		WindowEnd:       q.WindowEnd,
		Limit:           q.Limit,
	}
}

type CreateBookingRequest struct {
	RestaurantID    string `json:"restaurantId" binding:"required"`
	SectorID        string `json:"sectorId" binding:"required"`
	Date            string `json:"date" binding:"required"`
	PartySize       int    `json:"partySize"`
	DurationMinutes int    `json:"durationMinutes"`
	WindowStart     string `json:"windowStart,omitempty"`
	WindowEnd       string `json:"windowEnd,omitempty"`
}

type DayQuery struct {
	RestaurantID string `form:"restaurantId" binding:"required"`
	SectorID     string `form:"sectorId"`
	Date         string `form:"date" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type CandidateResponse struct {
	Kind     domain.CandidateKind `json:"kind"`
	TableIDs []string             `json:"tableIds"`
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Capacity domain.Capacity      `json:"capacity"`
	Waste    int                  `json:"waste"`
}

type DiscoverResponse struct {
	RestaurantID           string              `json:"restaurantId"`
	SectorID               string              `json:"sectorId"`
	Date                   string              `json:"date"`
	SlotGranularityMinutes int                 `json:"slotGranularityMinutes"`
	DurationMinutes        int                 `json:"durationMinutes"`
	Candidates             []CandidateResponse `json:"candidates"`
}

func newDiscoverResponse(res discovery.Result) DiscoverResponse {
	out := DiscoverResponse{
		RestaurantID:           res.Scope.Restaurant.ID,
		SectorID:               res.Scope.Sector.ID,
		Date:                   res.Scope.Date(),
		SlotGranularityMinutes: res.SlotGranularityMinutes,
		DurationMinutes:        res.DurationMinutes,
		Candidates:             make([]CandidateResponse, 0, len(res.Slots)),
	}
	for _, s := range res.Slots {
		out.Candidates = append(out.Candidates, CandidateResponse{
			Kind:     s.Candidate.Kind,
			TableIDs: s.Candidate.TableIDs,
			Start:    s.Start,
			End:      s.End,
			Capacity: s.Candidate.Capacity,
			Waste:    s.Candidate.Waste,
		})
	}
	return out
}
