// Package store persists layout results for later retrieval.
//
// The API service uses it to hand out stable layout IDs: a client can POST a
// snapshot once and fetch the computed positions again without re-running
// the layout. Two backends exist: [MongoStore] for deployments and
// [MemoryStore] for tests and single-process usage. The store is optional;
// a nil Store disables archiving.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fluxlab/flowsheet/pkg/flow"
)

// ErrNotFound is returned when a layout record does not exist.
var ErrNotFound = errors.New("not found")

// Record is a persisted layout result.
type Record struct {
	ID           string                `json:"id" bson:"_id"`
	Name         string                `json:"name" bson:"name"`
	SnapshotHash string                `json:"snapshot_hash" bson:"snapshot_hash"`
	Positions    map[string]flow.Point `json:"positions" bson:"positions"`
	CreatedAt    time.Time             `json:"created_at" bson:"created_at"`
}

// NewRecord assembles a record with a fresh ID and timestamp.
func NewRecord(name, snapshotHash string, positions map[string]flow.Point) Record {
	return Record{
		ID:           uuid.NewString(),
		Name:         name,
		SnapshotHash: snapshotHash,
		Positions:    positions,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store is the interface for layout persistence backends.
type Store interface {
	// Save persists a record. Saving an existing ID overwrites it.
	Save(ctx context.Context, rec Record) error

	// Get retrieves a record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Record, error)

	// FindByHash retrieves the most recent record for a snapshot hash.
	// Returns ErrNotFound if no layout was stored for that snapshot.
	FindByHash(ctx context.Context, snapshotHash string) (Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
