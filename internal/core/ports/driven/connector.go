package driven

import (
	"context"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Connector fetches raw items from a single data source.
// Each source type (arxiv, gmail, gcal, github, etc.) implements this
// interface independently; there is no hierarchy beyond it.
type Connector interface {
	// Name returns the source identifier (e.g. "arxiv", "gmail").
	Name() string

	// Available reports whether the connector can run at all:
	// credentials present, dependencies met. An unavailable connector
	// is recorded as skipped, never errored.
	Available() bool

	// Fetch collects the source's items. Expected conditions (no new
	// data, empty inbox) return an ok result with an empty payload,
	// never an error. Recoverable failures wrap
	// domain.ErrConnectorTransient so the orchestrator can retry once.
	// Fetch must honour ctx cancellation.
	Fetch(ctx context.Context) (domain.SourceResult, error)

	// Close releases resources.
	Close() error
}
