package data

import "github.com/meridianhq/meridian/internal/ports"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when a user row does not exist.
	ErrUserNotFound = ports.ErrUserNotFound
)
