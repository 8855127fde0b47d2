package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/perzequiel/woki-brain/internal/domain"
)

// Seed is the on-disk shape of a catalog fixture. Tables keep the order they
// appear in the file.
type Seed struct {
	Restaurants []domain.Restaurant `json:"restaurants"`
	Sectors     []domain.Sector     `json:"sectors"`
	Tables      []domain.Table      `json:"tables"`
	Bookings    []domain.Booking    `json:"bookings"`
}

// ReadSeed decodes a JSON seed file and fills booking defaults.
func ReadSeed(path string) (Seed, error) {
	const op = "repository.ReadSeed"

	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("%s:%w", op, err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("%s: decode %s:%w", op, path, err)
	}

	for _, r := range seed.Restaurants {
		if _, err := r.Location(); err != nil {
			return Seed{}, fmt.Errorf("%s: restaurant %s timezone:%w", op, r.ID, err)
		}
	}
	for i := range seed.Bookings {
		b := &seed.Bookings[i]
		if b.Status == "" {
			b.Status = domain.BookingConfirmed
		}
		if b.DurationMinutes == 0 {
			b.DurationMinutes = int(b.End.Sub(b.Start).Minutes())
		}
	}
	return seed, nil
}
