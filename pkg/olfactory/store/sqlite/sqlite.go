package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
	"github.com/cognicore/olfactory/pkg/olfactory/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, internalerr.ErrStoreUnavailable)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	threshold REAL NOT NULL,
	entry_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mapping_entries (
	snapshot_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	note TEXT NOT NULL,
	volatility INTEGER NOT NULL,
	PRIMARY KEY(snapshot_id, position),
	UNIQUE(snapshot_id, token),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveSnapshot writes the snapshot and its entries in one transaction.
func (s *sqliteStore) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("snapshot id is empty: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so entries are cleared explicitly.
	if _, err := tx.ExecContext(ctx, `DELETE FROM mapping_entries WHERE snapshot_id = ?`, snap.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, snap.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO snapshots (id, created_at, threshold, entry_count)
VALUES (?, ?, ?, ?);
`, snap.ID, snap.CreatedAt.UTC().Format(time.RFC3339Nano), snap.Threshold, len(snap.Entries)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO mapping_entries (snapshot_id, position, token, note, volatility)
VALUES (?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range snap.Entries {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, e.Token, e.Note, int(e.Volatility)); err != nil {
			return fmt.Errorf("insert entry %q: %w", e.Token, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads one snapshot; an empty id selects the newest.
func (s *sqliteStore) LoadSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	var row *sql.Row
	if id == "" {
		row = s.db.QueryRowContext(ctx, `
SELECT id, created_at, threshold FROM snapshots ORDER BY id DESC LIMIT 1;
`)
	} else {
		row = s.db.QueryRowContext(ctx, `
SELECT id, created_at, threshold FROM snapshots WHERE id = ?;
`, id)
	}

	var (
		snap    store.Snapshot
		created string
	)
	if err := row.Scan(&snap.ID, &created, &snap.Threshold); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Snapshot{}, fmt.Errorf("snapshot %q: %w", id, internalerr.ErrNotFound)
		}
		return store.Snapshot{}, err
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		snap.CreatedAt = parsed
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT token, note, volatility
FROM mapping_entries
WHERE snapshot_id = ?
ORDER BY position ASC;
`, snap.ID)
	if err != nil {
		return store.Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e mapping.Entry
			v int
		)
		if err := rows.Scan(&e.Token, &e.Note, &v); err != nil {
			return store.Snapshot{}, err
		}
		e.Volatility = mapping.Volatility(v)
		snap.Entries = append(snap.Entries, e)
	}
	return snap, rows.Err()
}

// ListSnapshots returns snapshot summaries, newest first.
func (s *sqliteStore) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, threshold, entry_count
FROM snapshots
ORDER BY id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []store.SnapshotInfo
	for rows.Next() {
		var (
			info    store.SnapshotInfo
			created string
		)
		if err := rows.Scan(&info.ID, &created, &info.Threshold, &info.Entries); err != nil {
			return nil, err
		}
		if parsed, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			info.CreatedAt = parsed
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
