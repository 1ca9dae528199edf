package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectorTransient indicates a recoverable fetch failure
	// (network hiccup, rate limit, 5xx). The orchestrator retries the
	// source exactly once before marking it errored.
	ErrConnectorTransient = errors.New("transient connector failure")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrCitationUnavailable indicates the citation lookup service is
	// unreachable. Classification degrades to keyword-only; Tier1
	// becomes unreachable for the run. A warning, never fatal.
	ErrCitationUnavailable = errors.New("citation lookup unavailable")

	// ErrSnapshotCorrupt indicates a persisted snapshot could not be
	// read. The run proceeds with an empty baseline and is flagged
	// degraded.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)
