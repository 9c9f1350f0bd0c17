package engine

import "errors"

var (
	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrStorageMissing indicates the store has not been initialized.
	ErrStorageMissing = errors.New("storage not initialized")
)
