package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

func TestDeltaNoHistoryIsEmptyNotZero(t *testing.T) {
	tracker := NewDeltaTracker(memory.NewSnapshotStore())

	records, err := tracker.Delta(context.Background(), "2026-08-28", map[string]float64{"citations": 100})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeltaAgainstPreviousDay(t *testing.T) {
	ctx := context.Background()
	tracker := NewDeltaTracker(memory.NewSnapshotStore())

	require.NoError(t, tracker.Record(ctx, "2026-08-27", map[string]float64{"citations": 100}))

	records, err := tracker.Delta(ctx, "2026-08-28", map[string]float64{"citations": 105})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.DeltaRecord{
		Metric:     "citations",
		Previous:   100,
		Current:    105,
		Delta:      5,
		ComparedTo: "2026-08-27",
	}, records[0])
}

func TestDeltaSkipsGapsToLatestEarlier(t *testing.T) {
	ctx := context.Background()
	tracker := NewDeltaTracker(memory.NewSnapshotStore())

	require.NoError(t, tracker.Record(ctx, "2026-08-20", map[string]float64{"citations": 90}))
	require.NoError(t, tracker.Record(ctx, "2026-08-25", map[string]float64{"citations": 100}))

	records, err := tracker.Delta(ctx, "2026-08-28", map[string]float64{"citations": 105})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-08-25", records[0].ComparedTo)
}

func TestDeltaStrictlyEarlierBaseline(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	tracker := NewDeltaTracker(store)

	require.NoError(t, tracker.Record(ctx, "2026-08-27", map[string]float64{"citations": 100}))
	// A same-date snapshot from an earlier rerun must not be its own
	// baseline.
	require.NoError(t, tracker.Record(ctx, "2026-08-28", map[string]float64{"citations": 104}))

	records, err := tracker.Delta(ctx, "2026-08-28", map[string]float64{"citations": 105})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-08-27", records[0].ComparedTo)
	assert.Equal(t, float64(5), records[0].Delta)
}

func TestDeltaOmitsUnchangedAndUnknownMetrics(t *testing.T) {
	ctx := context.Background()
	tracker := NewDeltaTracker(memory.NewSnapshotStore())

	require.NoError(t, tracker.Record(ctx, "2026-08-27", map[string]float64{
		"citations": 100,
		"reads":     500,
	}))

	records, err := tracker.Delta(ctx, "2026-08-28", map[string]float64{
		"citations": 100, // unchanged
		"reads":     520,
		"h":         30, // no baseline
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "reads", records[0].Metric)
	assert.Equal(t, float64(20), records[0].Delta)
}

func TestDeltaCorruptBaseline(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	tracker := NewDeltaTracker(store)

	require.NoError(t, tracker.Record(ctx, "2026-08-27", map[string]float64{"citations": 100}))
	store.MarkCorrupt("2026-08-27")

	_, err := tracker.Delta(ctx, "2026-08-28", map[string]float64{"citations": 105})

	assert.ErrorIs(t, err, domain.ErrSnapshotCorrupt)
}

func TestRecordOverwritesOnlyItsDate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	tracker := NewDeltaTracker(store)

	require.NoError(t, tracker.Record(ctx, "2026-08-27", map[string]float64{"citations": 100}))
	require.NoError(t, tracker.Record(ctx, "2026-08-28", map[string]float64{"citations": 104}))
	require.NoError(t, tracker.Record(ctx, "2026-08-28", map[string]float64{"citations": 105}))

	dates, err := store.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-27", "2026-08-28"}, dates)

	snap, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, float64(105), snap.Metrics["citations"])

	earlier, err := store.Get(ctx, "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, float64(100), earlier.Metrics["citations"])
}

func TestRecordEmptyMetricsNoOp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	tracker := NewDeltaTracker(store)

	require.NoError(t, tracker.Record(ctx, "2026-08-28", nil))

	dates, err := store.Dates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)
}
