package record

import "errors"

// Domain-specific errors for the record package.
var (
	ErrEmptyTitle      = errors.New("record title is empty")
	ErrInvalidPriority = errors.New("priority must be between 1 and 4")
	ErrNotFound        = errors.New("record not found")
)
