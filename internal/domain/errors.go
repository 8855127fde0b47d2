package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrNoCapacity           = errors.New("no capacity")
	ErrOutsideServiceWindow = errors.New("outside service window")
	ErrConflict             = errors.New("conflict")
)

const (
	CodeInvalidInput         = "invalid_input"
	CodeNotFound             = "not_found"
	CodeNoCapacity           = "no_capacity"
	CodeOutsideServiceWindow = "outside_service_window"
	CodeConflict             = "conflict"
	CodeInternal             = "internal"
)

// Code maps err to the stable code surfaced to callers.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNoCapacity):
		return CodeNoCapacity
	case errors.Is(err, ErrOutsideServiceWindow):
		return CodeOutsideServiceWindow
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}

	return CodeInternal
}
