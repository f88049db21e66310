// Package sqlite implements the feed image cache storage engine on a local
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lepinkainen/feedcache/storage"
)

// Engine owns the database connection for one cache file. All statements run
// on a single SQLite handle so they execute in submission order.
type Engine struct {
	db   *sql.DB
	path string
}

var _ storage.Engine = (*Engine)(nil)

// Open opens the cache database at dbPath, creating the file when it does
// not exist yet.
func Open(dbPath string) (*Engine, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storage.NewOpenError(dbPath, err)
	}

	// A single connection keeps the cache serialized on one handle
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, storage.NewOpenError(dbPath, errors.Join(err, closeErr))
	}

	return &Engine{
		db:   db,
		path: dbPath,
	}, nil
}

// PrepareSchema creates the FeedImageCache table if it doesn't exist
func (e *Engine) PrepareSchema(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, FeedImageCacheSchema); err != nil {
		return storage.NewSchemaError(err)
	}
	return nil
}

// ReadAll returns the cached feed in insertion order, or nil when the cache
// is empty. The snapshot timestamp comes from the first row; every row of a
// feed is written with the same value.
func (e *Engine) ReadAll(ctx context.Context) (*storage.Snapshot, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, description, location, url, timestamp
		FROM FeedImageCache
		ORDER BY rowid
	`)
	if err != nil {
		return nil, storage.NewQueryError("read cached feed", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot *storage.Snapshot
	for rows.Next() {
		var (
			id          string
			description sql.NullString
			location    sql.NullString
			rawURL      string
			secs        float64
		)
		if err := rows.Scan(&id, &description, &location, &rawURL, &secs); err != nil {
			return nil, storage.NewQueryError("read cached feed", err)
		}

		imageID, err := uuid.Parse(id)
		if err != nil {
			return nil, storage.NewQueryError("read cached feed", fmt.Errorf("invalid image id %q: %w", id, err))
		}
		imageURL, err := url.ParseRequestURI(rawURL)
		if err != nil {
			return nil, storage.NewQueryError("read cached feed", fmt.Errorf("invalid image url %q: %w", rawURL, err))
		}

		if snapshot == nil {
			snapshot = &storage.Snapshot{Timestamp: decodeTimestamp(secs)}
		}
		snapshot.Images = append(snapshot.Images, storage.FeedImage{
			ID:          imageID,
			Description: nullableString(description),
			Location:    nullableString(location),
			URL:         imageURL,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storage.NewQueryError("read cached feed", err)
	}

	return snapshot, nil
}

// InsertAll appends images to the cache without clearing existing rows. All
// rows are written in one transaction and share the given timestamp.
func (e *Engine) InsertAll(ctx context.Context, images []storage.FeedImage, timestamp time.Time) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.NewQueryError("insert cached feed", err)
	}
	defer func() {
		// Rollback is a no-op after commit
		_ = tx.Rollback()
	}()

	if err := insertImages(ctx, tx, images, timestamp); err != nil {
		return storage.NewQueryError("insert cached feed", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.NewQueryError("insert cached feed", err)
	}

	return nil
}

// Replace swaps the cached feed for the given one atomically: the delete and
// the inserts run in a single transaction, so a failed write leaves the
// previous feed intact.
func (e *Engine) Replace(ctx context.Context, images []storage.FeedImage, timestamp time.Time) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.NewQueryError("replace cached feed", err)
	}
	defer func() {
		// Rollback is a no-op after commit
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM FeedImageCache"); err != nil {
		return storage.NewQueryError("replace cached feed", err)
	}

	if err := insertImages(ctx, tx, images, timestamp); err != nil {
		return storage.NewQueryError("replace cached feed", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.NewQueryError("replace cached feed", err)
	}

	slog.Debug("Cached feed replaced", "images", len(images), "timestamp", timestamp)
	return nil
}

// DeleteAll removes every cached image. Deleting an already empty cache
// succeeds.
func (e *Engine) DeleteAll(ctx context.Context) error {
	result, err := e.db.ExecContext(ctx, "DELETE FROM FeedImageCache")
	if err != nil {
		return storage.NewQueryError("delete cached feed", err)
	}

	rows, _ := result.RowsAffected()
	slog.Debug("Cached feed deleted", "rows_deleted", rows)
	return nil
}

// Close closes the database connection
func (e *Engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// insertImages writes images inside the given transaction through one
// prepared statement. Every row gets the same timestamp.
func insertImages(ctx context.Context, tx *sql.Tx, images []storage.FeedImage, timestamp time.Time) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO FeedImageCache (id, description, location, url, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	secs := encodeTimestamp(timestamp)
	for _, img := range images {
		if img.URL == nil {
			return fmt.Errorf("image %s has no url", img.ID)
		}
		if _, err := stmt.ExecContext(ctx, img.ID.String(), img.Description, img.Location, img.URL.String(), secs); err != nil {
			return fmt.Errorf("failed to insert image %s: %w", img.ID, err)
		}
	}

	return nil
}

// nullableString converts a scanned nullable column to an optional value.
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
