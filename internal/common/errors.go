package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised before any network dispatch.
	ErrValidation = errors.New("validation error")

	// Configuration errors detected at startup.
	ErrInvalidConfig = errors.New("invalid configuration")
)
