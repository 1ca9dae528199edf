package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date:    "2026-08-28",
		Metrics: map[string]float64{"citations": 105, "indicators.h": 31},
	}))

	snap, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", snap.Date)
	assert.Equal(t, float64(105), snap.Metrics["citations"])
	assert.Equal(t, float64(31), snap.Metrics["indicators.h"])
}

func TestSnapshotStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "2026-08-28")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStoreSaveRejectsEmptyDate(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), domain.Snapshot{Metrics: map[string]float64{"x": 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSnapshotStoreOverwriteReplacesOnlyItsDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-27", Metrics: map[string]float64{"citations": 100},
	}))
	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-28", Metrics: map[string]float64{"citations": 104, "stale": 1},
	}))
	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-28", Metrics: map[string]float64{"citations": 105},
	}))

	snap, err := store.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"citations": 105}, snap.Metrics)

	earlier, err := store.Get(ctx, "2026-08-27")
	require.NoError(t, err)
	assert.Equal(t, float64(100), earlier.Metrics["citations"])
}

func TestSnapshotStoreLatestBefore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-20", Metrics: map[string]float64{"citations": 90},
	}))
	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-25", Metrics: map[string]float64{"citations": 100},
	}))
	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-28", Metrics: map[string]float64{"citations": 105},
	}))

	// Strictly earlier: the same-date snapshot is never its own
	// baseline.
	snap, err := store.LatestBefore(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25", snap.Date)

	_, err = store.LatestBefore(ctx, "2026-08-20")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStoreDates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	dates, err := store.Dates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	for _, d := range []string{"2026-08-28", "2026-08-20", "2026-08-25"} {
		require.NoError(t, store.Save(ctx, domain.Snapshot{
			Date: d, Metrics: map[string]float64{"citations": 1},
		}))
	}

	dates, err = store.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-20", "2026-08-25", "2026-08-28"}, dates)
}

func TestSnapshotStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewSnapshotStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, domain.Snapshot{
		Date: "2026-08-28", Metrics: map[string]float64{"citations": 105},
	}))
	require.NoError(t, store.Close())

	reopened, err := NewSnapshotStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	snap, err := reopened.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, float64(105), snap.Metrics["citations"])
}
