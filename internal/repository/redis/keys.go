package redis

import "fmt"

const ns = "woki:v1"

func KeyIdempotency(key string) string {
	return fmt.Sprintf("%s:idem:bookings:%s", ns, key)
}

// KeyBookingsDay holds the cached booking listing of one restaurant day.
// date is YYYY-MM-DD in the restaurant timezone.
func KeyBookingsDay(restaurantID, date string) string {
	return fmt.Sprintf("%s:restaurant:%s:bookings:%s", ns, restaurantID, date)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookingEvents() string {
	return ns + ":bookings:events"
}
