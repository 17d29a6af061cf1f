package errors

import "errors"

var (
	ErrNotFound = errors.New("category not found")

	ErrInvalidID = errors.New("invalid category ID format")
)
