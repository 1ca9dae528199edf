package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-28", Metrics: map[string]float64{"citations": 105},
	}))

	snap, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, float64(105), snap.Metrics["citations"])

	_, err = store.Get(ctx, "2026-08-27")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	metrics := map[string]float64{"citations": 100}
	require.NoError(t, store.Save(ctx, domain.Snapshot{Date: "2026-08-28", Metrics: metrics}))

	// Mutating caller-held maps must not reach the store.
	metrics["citations"] = 999
	snap, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, float64(100), snap.Metrics["citations"])

	snap.Metrics["citations"] = 7
	again, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, float64(100), again.Metrics["citations"])
}

func TestSnapshotStoreLatestBefore(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	require.NoError(t, store.Save(ctx, domain.Snapshot{Date: "2026-08-20", Metrics: map[string]float64{"x": 1}}))
	require.NoError(t, store.Save(ctx, domain.Snapshot{Date: "2026-08-25", Metrics: map[string]float64{"x": 2}}))

	snap, err := store.LatestBefore(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25", snap.Date)

	_, err = store.LatestBefore(ctx, "2026-08-20")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStoreCorruptDate(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	require.NoError(t, store.Save(ctx, domain.Snapshot{Date: "2026-08-27", Metrics: map[string]float64{"x": 1}}))
	store.MarkCorrupt("2026-08-27")

	_, err := store.Get(ctx, "2026-08-27")
	assert.ErrorIs(t, err, domain.ErrSnapshotCorrupt)

	_, err = store.LatestBefore(ctx, "2026-08-28")
	assert.ErrorIs(t, err, domain.ErrSnapshotCorrupt)

	// Saving over the corrupt date heals it.
	require.NoError(t, store.Save(ctx, domain.Snapshot{Date: "2026-08-27", Metrics: map[string]float64{"x": 2}}))
	snap, err := store.Get(ctx, "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, float64(2), snap.Metrics["x"])
}
