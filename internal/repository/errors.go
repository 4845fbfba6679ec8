package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write loses to a
	// concurrent one (slot already taken, status already changed).
	ErrConflict = errors.New("conflicting write")
)
