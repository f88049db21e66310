// Package memory provides a storage engine that keeps the cached feed in
// process memory. It backs tests and callers that want cache semantics
// without a database file.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lepinkainen/feedcache/storage"
)

// ErrEngineClosed indicates an operation on a closed engine.
var ErrEngineClosed = errors.New("memory engine is closed")

// Engine stores the cached feed in memory behind a mutex.
type Engine struct {
	mu        sync.Mutex
	images    []storage.FeedImage
	timestamp time.Time
	closed    bool
}

var _ storage.Engine = (*Engine)(nil)

// NewEngine creates an empty in-memory engine.
func NewEngine() *Engine {
	return &Engine{}
}

// PrepareSchema is a no-op; there is no schema to create in memory.
func (e *Engine) PrepareSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.NewSchemaError(ErrEngineClosed)
	}
	return nil
}

// ReadAll returns a copy of the cached feed, or nil when the cache is empty.
func (e *Engine) ReadAll(ctx context.Context) (*storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, storage.NewQueryError("read cached feed", ErrEngineClosed)
	}
	if len(e.images) == 0 {
		return nil, nil
	}
	return &storage.Snapshot{
		Images:    cloneImages(e.images),
		Timestamp: e.timestamp,
	}, nil
}

// Replace swaps the cached feed for the given one. An empty feed leaves the
// cache empty.
func (e *Engine) Replace(ctx context.Context, images []storage.FeedImage, timestamp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.NewQueryError("replace cached feed", ErrEngineClosed)
	}
	e.images = cloneImages(images)
	e.timestamp = timestamp
	return nil
}

// DeleteAll removes the cached feed.
func (e *Engine) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.NewQueryError("delete cached feed", ErrEngineClosed)
	}
	e.images = nil
	return nil
}

// Close marks the engine closed. Later operations fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	return nil
}

// cloneImages copies the feed so callers and the engine never share backing
// data. Pointer fields are cloned too.
func cloneImages(images []storage.FeedImage) []storage.FeedImage {
	if images == nil {
		return nil
	}
	cloned := make([]storage.FeedImage, len(images))
	for i, img := range images {
		cloned[i] = img
		if img.Description != nil {
			description := *img.Description
			cloned[i].Description = &description
		}
		if img.Location != nil {
			location := *img.Location
			cloned[i].Location = &location
		}
		if img.URL != nil {
			imageURL := *img.URL
			cloned[i].URL = &imageURL
		}
	}
	return cloned
}
