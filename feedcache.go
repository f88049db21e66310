// Package feedcache persists a feed of image metadata in a local SQLite
// database and serves it back as a single unit.
//
// The store completes every operation asynchronously: Retrieve, Insert and
// DeleteCachedFeed hand back a one-value channel that receives the outcome
// once the operation has run. Operations execute one at a time in submission
// order, so a Retrieve enqueued after an Insert always observes its effect.
package feedcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lepinkainen/feedcache/storage"
	"github.com/lepinkainen/feedcache/storage/sqlite"
)

// ErrStoreClosed completes operations submitted after Close.
var ErrStoreClosed = errors.New("feed cache store is closed")

// RetrieveResult carries the outcome of a Retrieve. Feed is nil when the
// cache is empty.
type RetrieveResult struct {
	Feed *storage.Snapshot
	Err  error
}

// Store is a durable cache for one feed of image metadata. Insert replaces
// the whole cached feed, so the cache always holds the latest feed or
// nothing.
type Store struct {
	engine storage.Engine

	mu     sync.RWMutex
	closed bool
	jobs   chan func()
	done   chan struct{}
}

// New opens or creates the cache database at dbPath and prepares its schema.
// The caller must Close the store to release the database file.
func New(dbPath string) (*Store, error) {
	engine, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := engine.PrepareSchema(context.Background()); err != nil {
		closeErr := engine.Close()
		return nil, errors.Join(err, closeErr)
	}
	return NewWithEngine(engine), nil
}

// NewWithEngine creates a store on an already prepared engine. The store
// owns the engine and closes it on Close.
func NewWithEngine(engine storage.Engine) *Store {
	s := &Store{
		engine: engine,
		jobs:   make(chan func()),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// run executes queued operations one at a time until Close drains the queue.
func (s *Store) run() {
	defer close(s.done)
	for op := range s.jobs {
		op()
	}
}

// enqueue hands op to the worker. It reports false when the store is closed.
func (s *Store) enqueue(op func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	s.jobs <- op
	return true
}

// Retrieve reads the cached feed. The returned channel receives exactly one
// result: the feed, a nil feed for an empty cache, or the read error.
func (s *Store) Retrieve() <-chan RetrieveResult {
	result := make(chan RetrieveResult, 1)
	queued := s.enqueue(func() {
		snapshot, err := s.engine.ReadAll(context.Background())
		// A snapshot without images is an empty cache, whichever way the
		// engine chose to report it
		if snapshot != nil && len(snapshot.Images) == 0 {
			snapshot = nil
		}
		result <- RetrieveResult{Feed: snapshot, Err: err}
	})
	if !queued {
		result <- RetrieveResult{Err: ErrStoreClosed}
	}
	return result
}

// Insert replaces the cached feed with images, all stamped with timestamp.
// The previous feed is gone once the returned channel reports nil; on error
// it remains intact. Inserting an empty feed leaves the cache empty.
//
// The images slice is read when the operation executes, so the caller must
// not modify it before the completion arrives.
func (s *Store) Insert(images []storage.FeedImage, timestamp time.Time) <-chan error {
	result := make(chan error, 1)
	for _, img := range images {
		if img.URL == nil {
			result <- storage.NewQueryError("insert cached feed", fmt.Errorf("image %s has no url", img.ID))
			return result
		}
	}
	queued := s.enqueue(func() {
		result <- s.engine.Replace(context.Background(), images, timestamp)
	})
	if !queued {
		result <- ErrStoreClosed
	}
	return result
}

// DeleteCachedFeed empties the cache. Deleting an already empty cache
// succeeds.
func (s *Store) DeleteCachedFeed() <-chan error {
	result := make(chan error, 1)
	queued := s.enqueue(func() {
		result <- s.engine.DeleteAll(context.Background())
	})
	if !queued {
		result <- ErrStoreClosed
	}
	return result
}

// Close waits for already queued operations to finish, then closes the
// engine. Operations submitted after Close complete with ErrStoreClosed.
// Closing an already closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	<-s.done
	return s.engine.Close()
}
