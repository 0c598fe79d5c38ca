package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"baselinedev/baseline"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// snapshotsKept is how many persisted snapshots survive a save.
const snapshotsKept = 3

// SnapshotStorage persists remote feature snapshots so the resolver's cache
// tier survives restarts.
type SnapshotStorage struct {
	db *sql.DB
}

func NewSnapshotStorage(dataDir string) (*SnapshotStorage, error) {
	return OpenSnapshotStorage(filepath.Join(dataDir, "snapshots.db"))
}

// OpenSnapshotStorage opens the database at dbPath. ":memory:" is accepted.
func OpenSnapshotStorage(dbPath string) (*SnapshotStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &SnapshotStorage{db: db}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (ss *SnapshotStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		feature_count INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
	`

	_, err := ss.db.Exec(schema)
	return err
}

// SaveSnapshot stores snap and prunes all but the newest few snapshots.
// Only snapshots with a fetch time are stored.
func (ss *SnapshotStorage) SaveSnapshot(ctx context.Context, snap *baseline.Snapshot) error {
	if snap == nil || snap.FetchedAt.IsZero() {
		return errors.New("snapshot has no fetch time")
	}

	payload, err := json.Marshal(snap.Features())
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, source, fetched_at, feature_count, payload)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), string(snap.Source), snap.FetchedAt.UnixNano(), snap.Len(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY fetched_at DESC LIMIT ?
		)
	`, snapshotsKept)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return tx.Commit()
}

// LatestSnapshot returns the newest stored snapshot, or nil when the store
// is empty. The stored source is kept; the resolver relabels it as cached.
func (ss *SnapshotStorage) LatestSnapshot(ctx context.Context) (*baseline.Snapshot, error) {
	var (
		source    string
		fetchedAt int64
		payload   []byte
	)

	err := ss.db.QueryRowContext(ctx, `
		SELECT source, fetched_at, payload FROM snapshots
		ORDER BY fetched_at DESC LIMIT 1
	`).Scan(&source, &fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snap, err := baseline.SnapshotFromJSON(payload, baseline.Source(source), time.Unix(0, fetchedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored snapshot: %w", err)
	}
	return snap, nil
}

// Count returns the number of stored snapshots.
func (ss *SnapshotStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := ss.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (ss *SnapshotStorage) Close() error {
	return ss.db.Close()
}
