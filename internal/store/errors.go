package store

import "errors"

var (
	// ErrNotFound is returned by Get when the key doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrUnavailable is returned when the backing store cannot be reached
	// or refuses the operation. Callers can branch on it to tell outages
	// apart from genuinely missing objects.
	ErrUnavailable = errors.New("object store unavailable")
)
