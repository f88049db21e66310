// Package storage defines the persistence contract for the feed image cache:
// the record and snapshot model, the Engine interface the cache store runs
// on, and the error taxonomy engines report.
package storage

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// FeedImage is one cached feed image's metadata.
type FeedImage struct {
	ID          uuid.UUID
	Description *string // nil when the feed carried no description
	Location    *string // nil when the feed carried no location
	URL         *url.URL
}

// Snapshot is the complete cached feed: every image in insertion order plus
// the single timestamp the snapshot was cached at.
type Snapshot struct {
	Images    []FeedImage
	Timestamp time.Time
}

// Engine owns a backing database and translates between FeedImage records
// and stored rows. Implementations must be safe for use from multiple
// goroutines; calls against one engine are serialized internally.
type Engine interface {
	// PrepareSchema creates the cache table if it does not exist.
	// Idempotent, so callers run it on every store construction.
	PrepareSchema(ctx context.Context) error

	// ReadAll returns the stored snapshot, or (nil, nil) when the cache
	// holds no rows. A row that cannot be decoded fails the whole read;
	// partial snapshots are never returned.
	ReadAll(ctx context.Context) (*Snapshot, error)

	// Replace swaps the stored snapshot for the given images and
	// timestamp in a single atomic step. On failure the previous
	// snapshot remains intact.
	Replace(ctx context.Context, images []FeedImage, timestamp time.Time) error

	// DeleteAll removes every cached row. Deleting an already-empty
	// cache succeeds.
	DeleteAll(ctx context.Context) error

	// Close releases the backing database handle.
	Close() error
}
