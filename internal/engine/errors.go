package engine

import "errors"

var (
	// ErrValidation indicates a request that cannot be run.
	ErrValidation = errors.New("validation failed")

	// ErrPersist indicates that one or more runs finished but their output
	// could not be written.
	ErrPersist = errors.New("persistence failed")
)
