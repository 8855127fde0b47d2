package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type CandidateKind string

const (
	KindSingle CandidateKind = "single"
	KindCombo  CandidateKind = "combo"
)

// ClockTime is a local time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}

	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant of c on the calendar day of day, in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type ServiceWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

type Restaurant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Timezone       string          `json:"timezone"`
	ServiceWindows []ServiceWindow `json:"windows,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Location resolves the restaurant timezone, falling back to UTC when unset.
func (r Restaurant) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(r.Timezone)
}

type Sector struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Table is the allocatable resource. MinSize and MaxSize are inclusive.
type Table struct {
	ID        string    `json:"id"`
	SectorID  string    `json:"sectorId"`
	Name      string    `json:"name"`
	MinSize   int       `json:"minSize"`
	MaxSize   int       `json:"maxSize"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Booking occupies its tables over the half-open interval [Start, End).
type Booking struct {
	ID              string        `json:"id"`
	RestaurantID    string        `json:"restaurantId"`
	SectorID        string        `json:"sectorId"`
	TableIDs        []string      `json:"tableIds"`
	PartySize       int           `json:"partySize"`
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	DurationMinutes int           `json:"durationMinutes"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (b Booking) UsesTable(tableID string) bool {
	for _, id := range b.TableIDs {
		if id == tableID {
			return true
		}
	}
	return false
}

func (b Booking) SharesTable(tableIDs []string) bool {
	for _, id := range tableIDs {
		if b.UsesTable(id) {
			return true
		}
	}
	return false
}

// TimeGap is a free half-open interval [Start, End).
type TimeGap struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (g TimeGap) Duration() time.Duration {
	return g.End.Sub(g.Start)
}

type Capacity struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (c Capacity) Fits(partySize int) bool {
	return c.Min <= partySize && partySize <= c.Max
}

// Candidate is a table (or contiguous run of tables) paired with a free gap.
type Candidate struct {
	Kind     CandidateKind `json:"kind"`
	TableIDs []string      `json:"tableIds"`
	Gap      TimeGap       `json:"gap"`
	Capacity Capacity      `json:"capacity"`
	Waste    int           `json:"waste"`
}
