package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrIDMismatch   = errors.New("recipe id mismatch")
)
