package board

import (
	"github.com/flowweek/flowweek/internal/domain/shared"
)

// ConflictError is returned when an update carries a stale version
// marker. Current holds the canonical record as it exists on the server
// (a *board.NodePayload or *board.EdgePayload) so callers can merge it
// into their caches and retry against the fresh version.
type ConflictError struct {
	Current any
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return shared.ErrConcurrencyConflict.Message
}

// Unwrap lets errors.Is match shared.ErrConcurrencyConflict
func (e *ConflictError) Unwrap() error {
	return shared.ErrConcurrencyConflict
}
