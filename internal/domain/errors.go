package domain

import "errors"

// Sentinel errors shared across repository backends. NotFound is soft:
// Get returns (nil, ErrNotFound) and callers decide whether absence is
// worth surfacing.
var (
	ErrNotFound = errors.New("session not found")
	// ErrValidation marks input rejected before any mutation happened.
	ErrValidation = errors.New("validation failed")
	// ErrVersionConflict signals a lost-update race detected via Rev.
	ErrVersionConflict = errors.New("session revision conflict")
	// ErrNetwork wraps remote collaborator failures; surfaced, not retried.
	ErrNetwork = errors.New("remote api unreachable")
)
