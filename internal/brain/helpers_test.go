package brain

import (
	"time"

	"github.com/perzequiel/woki-brain/internal/domain"
)

var testDay = time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)

// at returns hh:mm on testDay; 24:00 is the following midnight.
func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func table(id string, minSize, maxSize int) domain.Table {
	return domain.Table{ID: id, SectorID: "S1", Name: id, MinSize: minSize, MaxSize: maxSize}
}

func booking(id string, start, end time.Time, tables ...string) domain.Booking {
	return domain.Booking{
		ID:              id,
		RestaurantID:    "R1",
		SectorID:        "S1",
		TableIDs:        tables,
		PartySize:       2,
		Start:           start,
		End:             end,
		DurationMinutes: int(end.Sub(start) / time.Minute),
		Status:          domain.BookingConfirmed,
	}
}

func gap(start, end time.Time) domain.TimeGap {
	return domain.TimeGap{Start: start, End: end}
}

func clock(h, m int) *domain.ClockTime {
	return &domain.ClockTime{Hour: h, Minute: m}
}

func window(sh, sm, eh, em int) domain.ServiceWindow {
	return domain.ServiceWindow{
		Start: domain.ClockTime{Hour: sh, Minute: sm},
		End:   domain.ClockTime{Hour: eh, Minute: em},
	}
}

func query(duration int, windows ...domain.ServiceWindow) Query {
	return Query{Day: testDay, DurationMinutes: duration, ServiceWindows: windows, Location: time.UTC}
}
