package driven

import (
	"context"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// SnapshotStore persists dated metric snapshots. The store is
// append-only by date: saving a date replaces that date's entry only
// and never touches earlier dates. Any single date must be readable
// without loading the full history.
//
// Writes are single-writer-per-run (the delta tracker); reads are safe
// to issue concurrently with no writer present.
type SnapshotStore interface {
	// Save persists or overwrites the snapshot for its date.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Get returns the snapshot for an exact date.
	// Returns domain.ErrNotFound if the date has no snapshot and
	// domain.ErrSnapshotCorrupt if the record is unreadable.
	Get(ctx context.Context, date string) (*domain.Snapshot, error)

	// LatestBefore returns the most recent snapshot strictly earlier
	// than date. Returns domain.ErrNotFound when no earlier snapshot
	// exists; the caller treats that as "no history yet", never as
	// "no change".
	LatestBefore(ctx context.Context, date string) (*domain.Snapshot, error)

	// Dates lists all snapshot dates in ascending order.
	Dates(ctx context.Context) ([]string, error)

	// Close releases the underlying storage.
	Close() error
}
