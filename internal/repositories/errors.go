package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist, or a write
	// referenced a user that does not.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)
