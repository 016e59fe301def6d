package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with existing state (duplicate key, terminal status)
	ErrConflict = errors.New("conflict")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingReference is returned when a record points at a parent that doesn't exist
	ErrMissingReference = errors.New("missing reference")

	// ErrHasDependents is returned when deleting a parent that independent records still reference
	ErrHasDependents = errors.New("has dependents")
)
