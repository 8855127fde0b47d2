package allocation

import (
	"fmt"

	"github.com/perzequiel/woki-brain/internal/domain"
)

var (
	ErrMissingIdempotencyKey = fmt.Errorf("%w: idempotency key is required", domain.ErrInvalidInput)
	ErrLockHeld              = fmt.Errorf("%w: allocation already in progress", domain.ErrConflict)
	ErrCollision             = fmt.Errorf("%w: tables were taken meanwhile", domain.ErrConflict)
	ErrKeyInFlight           = fmt.Errorf("%w: a request with this idempotency key is still running", domain.ErrConflict)
)
