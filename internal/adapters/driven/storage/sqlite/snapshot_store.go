// Package sqlite provides the persistent snapshot store backed by
// SQLite. One row per (date, metric) pair, so any single date is
// readable without loading the full history.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/briefing-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is the SQLite-backed implementation of
// driven.SnapshotStore.
type SnapshotStore struct {
	db   *sql.DB
	path string
}

// NewSnapshotStore opens (or creates) the snapshot database in
// dataDir. If dataDir is empty, defaults to ~/.briefing/data.
func NewSnapshotStore(dataDir string) (*SnapshotStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".briefing", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "snapshots.db")

	// WAL mode so history reads do not block the run's single writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SnapshotStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save replaces the metric rows for the snapshot's date in one
// transaction. Other dates are never touched.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	if snap.Date == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_metrics WHERE date = ?", snap.Date); err != nil {
		return fmt.Errorf("clearing snapshot %s: %w", snap.Date, err)
	}

	names := make([]string, 0, len(snap.Metrics))
	for name := range snap.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO snapshot_metrics (date, metric, value) VALUES (?, ?, ?)",
			snap.Date, name, snap.Metrics[name]); err != nil {
			return fmt.Errorf("inserting metric %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", snap.Date, err)
	}
	return nil
}

// Get returns the snapshot for an exact date.
func (s *SnapshotStore) Get(ctx context.Context, date string) (*domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT metric, value FROM snapshot_metrics WHERE date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot %s: %w", date, err)
	}
	defer rows.Close()

	metrics := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, date, err)
		}
		metrics[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, date, err)
	}
	if len(metrics) == 0 {
		return nil, domain.ErrNotFound
	}

	return &domain.Snapshot{Date: date, Metrics: metrics}, nil
}

// LatestBefore returns the most recent snapshot strictly earlier than
// date.
func (s *SnapshotStore) LatestBefore(ctx context.Context, date string) (*domain.Snapshot, error) {
	var latest sql.NullString
	row := s.db.QueryRowContext(ctx,
		"SELECT MAX(date) FROM snapshot_metrics WHERE date < ?", date)
	if err := row.Scan(&latest); err != nil {
		return nil, fmt.Errorf("querying latest snapshot before %s: %w", date, err)
	}
	if !latest.Valid || latest.String == "" {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, latest.String)
}

// Dates lists all snapshot dates in ascending order.
func (s *SnapshotStore) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT date FROM snapshot_metrics ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("querying snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning snapshot date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot dates: %w", err)
	}
	return dates, nil
}

// migrate applies any pending .up.sql migrations from the embedded FS.
func (s *SnapshotStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
	}

	return nil
}
