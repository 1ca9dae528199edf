package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

// DeltaTracker persists a daily metric snapshot and computes deltas
// against the most recent strictly earlier snapshot. It is the single
// writer of the snapshot store within a run.
type DeltaTracker struct {
	store driven.SnapshotStore
}

// NewDeltaTracker creates a delta tracker over the given store.
func NewDeltaTracker(store driven.SnapshotStore) *DeltaTracker {
	return &DeltaTracker{store: store}
}

// Record persists the metrics as the snapshot for date, overwriting
// that date's entry only. Prior dates are never deleted.
func (t *DeltaTracker) Record(ctx context.Context, date string, metrics map[string]float64) error {
	if len(metrics) == 0 {
		return nil
	}
	if err := t.store.Save(ctx, domain.Snapshot{Date: date, Metrics: metrics}); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", date, err)
	}
	return nil
}

// Delta compares the supplied metrics against the latest snapshot
// strictly before date. With no prior snapshot it returns an empty
// slice and no error: absence of delta means "no history yet", never
// "no change". Metrics with a zero difference are omitted. A corrupt
// baseline is reported via domain.ErrSnapshotCorrupt so the caller can
// proceed with an empty baseline and flag the run degraded.
func (t *DeltaTracker) Delta(ctx context.Context, date string, metrics map[string]float64) ([]domain.DeltaRecord, error) {
	prev, err := t.store.LatestBefore(ctx, date)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []domain.DeltaRecord
	for _, name := range names {
		previous, ok := prev.Metrics[name]
		if !ok {
			continue
		}
		current := metrics[name]
		if current == previous {
			continue
		}
		records = append(records, domain.DeltaRecord{
			Metric:     name,
			Previous:   previous,
			Current:    current,
			Delta:      current - previous,
			ComparedTo: prev.Date,
		})
	}
	return records, nil
}
