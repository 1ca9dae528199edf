// Package memory provides in-memory implementations of the storage
// ports, used in tests and when persistence is disabled.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]float64
	corrupt   map[string]bool
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]map[string]float64),
		corrupt:   make(map[string]bool),
	}
}

// Save persists or overwrites the snapshot for its date.
func (s *SnapshotStore) Save(_ context.Context, snap domain.Snapshot) error {
	if snap.Date == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := make(map[string]float64, len(snap.Metrics))
	for k, v := range snap.Metrics {
		metrics[k] = v
	}
	s.snapshots[snap.Date] = metrics
	delete(s.corrupt, snap.Date)
	return nil
}

// Get returns the snapshot for an exact date.
func (s *SnapshotStore) Get(_ context.Context, date string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(date)
}

func (s *SnapshotStore) getLocked(date string) (*domain.Snapshot, error) {
	if s.corrupt[date] {
		return nil, domain.ErrSnapshotCorrupt
	}
	metrics, ok := s.snapshots[date]
	if !ok {
		return nil, domain.ErrNotFound
	}

	out := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		out[k] = v
	}
	return &domain.Snapshot{Date: date, Metrics: out}, nil
}

// LatestBefore returns the most recent snapshot strictly earlier than
// date. ISO dates order lexicographically, so string comparison is the
// chronological comparison.
func (s *SnapshotStore) LatestBefore(_ context.Context, date string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	for d := range s.snapshots {
		if d < date && d > best {
			best = d
		}
	}
	for d := range s.corrupt {
		if d < date && d > best {
			best = d
		}
	}
	if best == "" {
		return nil, domain.ErrNotFound
	}
	return s.getLocked(best)
}

// Dates lists all snapshot dates in ascending order.
func (s *SnapshotStore) Dates(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]string, 0, len(s.snapshots))
	for d := range s.snapshots {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// Close is a no-op for the in-memory store.
func (s *SnapshotStore) Close() error {
	return nil
}

// MarkCorrupt makes reads of the given date fail with
// domain.ErrSnapshotCorrupt. Test hook for degraded-baseline paths.
func (s *SnapshotStore) MarkCorrupt(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[date] = true
}
