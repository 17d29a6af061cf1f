package errors

import "errors"

var (
	ErrNotFound = errors.New("consultation not found")

	ErrInvalidID = errors.New("invalid consultation ID format")
)
