package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleStatus means the booking's status moved between the guard
	// check and the write, or the booking disappeared.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)
