package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrRegistrantNotFound = errors.New("registrant not found")

	// Session errors
	ErrSessionNotFound = errors.New("registration session not found")
	ErrWrongStep       = errors.New("operation not allowed in the current registration step")
)
