package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore implements Store on a PostgreSQL database
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to databaseURL and creates the snapshots table if
// it does not exist.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schnet_snapshots (
			hash TEXT PRIMARY KEY,
			processing_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			created TIMESTAMPTZ NOT NULL,
			components INTEGER NOT NULL,
			nets INTEGER NOT NULL,
			document JSONB NOT NULL
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	logger.Debug("connected to snapshot database",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database))

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Put stores s unless a snapshot with the same hash exists
func (st *PostgresStore) Put(ctx context.Context, s Snapshot) (bool, error) {
	tag, err := st.pool.Exec(ctx, `
		INSERT INTO schnet_snapshots (hash, processing_id, filename, created, components, nets, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (hash) DO NOTHING`,
		s.Hash, s.ProcessingID, s.Filename, s.Created, s.Components, s.Nets, string(s.Document))
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns the snapshot with hash, or ErrNotFound
func (st *PostgresStore) Get(ctx context.Context, hash string) (*Snapshot, error) {
	var s Snapshot
	var doc string
	err := st.pool.QueryRow(ctx, `
		SELECT hash, processing_id, filename, created, components, nets, document::text
		FROM schnet_snapshots WHERE hash = $1`, hash).
		Scan(&s.Hash, &s.ProcessingID, &s.Filename, &s.Created, &s.Components, &s.Nets, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s.Document = []byte(doc)
	return &s, nil
}

// List returns up to limit snapshots, newest first, without documents.
// A limit of zero or less returns all snapshots.
func (st *PostgresStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `
		SELECT hash, processing_id, filename, created, components, nets
		FROM schnet_snapshots ORDER BY created DESC, hash`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := st.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Hash, &s.ProcessingID, &s.Filename, &s.Created, &s.Components, &s.Nets); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

// Close closes the connection pool
func (st *PostgresStore) Close() error {
	if st.pool != nil {
		st.pool.Close()
	}
	return nil
}
