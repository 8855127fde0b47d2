package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perzequiel/woki-brain/internal/domain"
)

const EventBookingCreated = "booking.created"

// BookingEvent is the message published after a booking is stored.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"bookingId"`
	RestaurantID string    `json:"restaurantId"`
	SectorID     string    `json:"sectorId"`
	TableIDs     []string  `json:"tableIds"`
	Date         string    `json:"date"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	TsUnix       int64     `json:"tsUnix"`
}

type BookingEvents struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

func NewBookingEvents(rdb *redis.Client) *BookingEvents {
	return &BookingEvents{
		rdb:     rdb,
		channel: ChannelBookingEvents(),
		now:     time.Now,
	}
}

// PublishBookingCreated announces b. date is the restaurant-local day the
// booking belongs to.
func (p *BookingEvents) PublishBookingCreated(ctx context.Context, b domain.Booking, date string) error {
	const op = "redis.BookingEvents.PublishBookingCreated"

	msg := BookingEvent{
		Type:         EventBookingCreated,
		BookingID:    b.ID,
		RestaurantID: b.RestaurantID,
		SectorID:     b.SectorID,
		TableIDs:     b.TableIDs,
		Date:         date,
		Start:        b.Start,
		End:          b.End,
		TsUnix:       p.now().Unix(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

// Subscribe delivers events to handler until ctx is done. Malformed
// messages are dropped.
func (p *BookingEvents) Subscribe(ctx context.Context, handler func(ctx context.Context, ev BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev BookingEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BookingID != "" {
				handler(ctx, ev)
			}
		}
	}
}
