package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrTimeConflict is returned by the store when an insert loses the
	// serialization race: the conflict re-check under the slot lock found an
	// overlapping booking.
	ErrTimeConflict = errors.New("booking interval conflicts with an existing booking")

	// ErrLockUnavailable is returned when the slot lock could not be acquired
	// before the caller's deadline.
	ErrLockUnavailable = errors.New("slot lock not acquired before deadline")
)
