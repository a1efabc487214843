// Package snapshot persists serialized netlist documents keyed by their
// content hash, so repeated runs over an unchanged schematic are detected.
package snapshot

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no snapshot has the requested hash
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored document
type Snapshot struct {
	Hash         string    // hex SHA-256 of the document without processing metadata
	ProcessingID string    // run identifier of the first run that stored it
	Filename     string    // original input name
	Created      time.Time // time of first storage
	Components   int
	Nets         int
	Document     []byte // compact JSON document
}

// Store persists snapshots. Put is idempotent on Hash: storing an existing
// hash keeps the original row and reports created=false.
type Store interface {
	Put(ctx context.Context, s Snapshot) (created bool, err error)
	Get(ctx context.Context, hash string) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]Snapshot, error)
	Close() error
}
