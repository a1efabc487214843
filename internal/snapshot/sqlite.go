package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schemaVersion = "1"

// SQLiteStore implements Store on a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path and bootstraps its schema
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			hash TEXT PRIMARY KEY,
			processing_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			created INTEGER NOT NULL,
			components INTEGER NOT NULL,
			nets INTEGER NOT NULL,
			document BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	logger.Debug("opened snapshot store", zap.String("path", path))
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Put stores s unless a snapshot with the same hash exists
func (st *SQLiteStore) Put(ctx context.Context, s Snapshot) (bool, error) {
	res, err := st.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO snapshots (hash, processing_id, filename, created, components, nets, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Hash, s.ProcessingID, s.Filename, s.Created.UnixNano(), s.Components, s.Nets, s.Document)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// Get returns the snapshot with hash, or ErrNotFound
func (st *SQLiteStore) Get(ctx context.Context, hash string) (*Snapshot, error) {
	row := st.db.QueryRowContext(ctx, `
		SELECT hash, processing_id, filename, created, components, nets, document
		FROM snapshots WHERE hash = ?`, hash)

	var s Snapshot
	var created int64
	err := row.Scan(&s.Hash, &s.ProcessingID, &s.Filename, &created, &s.Components, &s.Nets, &s.Document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s.Created = time.Unix(0, created).UTC()
	return &s, nil
}

// List returns up to limit snapshots, newest first. Documents are not
// loaded. A limit of zero or less returns all snapshots.
func (st *SQLiteStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := st.db.QueryContext(ctx, `
		SELECT hash, processing_id, filename, created, components, nets
		FROM snapshots ORDER BY created DESC, hash LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var created int64
		if err := rows.Scan(&s.Hash, &s.ProcessingID, &s.Filename, &created, &s.Components, &s.Nets); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Created = time.Unix(0, created).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

// Close closes the database connection
func (st *SQLiteStore) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}
