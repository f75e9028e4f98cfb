package data

import (
	"errors"
	"fmt"
)

// Standard errors that every image driver must translate backend faults into.
// No backend-specific error type crosses the driver boundary.
var (
	// Record errors
	ErrImageExists   = errors.New("imagestore: image already exists")
	ErrImageNotFound = errors.New("imagestore: image not found")

	// Metadata errors
	ErrMetadataClear = errors.New("imagestore: unable to remove metadata")

	// Backend errors
	ErrStoreUnavailable = errors.New("imagestore: store unavailable")
	ErrDriverClosed     = errors.New("imagestore: driver not open")
)

// StoreUnavailable classifies an arbitrary backend fault while preserving the
// cause for diagnostics. errors.Is matches both ErrStoreUnavailable and err.
func StoreUnavailable(err error) error {
	if err == nil {
		return ErrStoreUnavailable
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// MetadataClear re-signals a failed metadata removal so callers can tell
// clear-failures apart from set-failures.
func MetadataClear(err error) error {
	if err == nil {
		return ErrMetadataClear
	}

	return fmt.Errorf("%w: %w", ErrMetadataClear, err)
}
