package probe

import "errors"

var (
	// ErrInvalidCount indicates a repetition count below 1.
	ErrInvalidCount = errors.New("count must be greater than 0")
)
