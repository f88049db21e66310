package memory

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/feedcache/storage"
)

func TestReplaceReadAllRoundTrip(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	timestamp := time.Date(2026, time.May, 5, 14, 0, 0, 0, time.UTC)
	images := []storage.FeedImage{
		{
			ID:          uuid.New(),
			Description: stringPtr("A lighthouse"),
			Location:    stringPtr("Utö"),
			URL:         mustParseURL(t, "http://images.example.com/one.png"),
		},
		{
			ID:  uuid.New(),
			URL: mustParseURL(t, "http://images.example.com/two.png"),
		},
	}

	if err := engine.Replace(context.Background(), images, timestamp); err != nil {
		t.Fatalf("replace: %v", err)
	}

	snapshot, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if snapshot == nil {
		t.Fatal("snapshot = nil, want cached feed")
	}
	if !snapshot.Timestamp.Equal(timestamp) {
		t.Fatalf("timestamp = %v, want %v", snapshot.Timestamp, timestamp)
	}
	if len(snapshot.Images) != 2 {
		t.Fatalf("image count = %d, want 2", len(snapshot.Images))
	}
	if snapshot.Images[0].ID != images[0].ID {
		t.Fatalf("image 0 id = %s, want %s", snapshot.Images[0].ID, images[0].ID)
	}
	if got := snapshot.Images[0].Description; got == nil || *got != "A lighthouse" {
		t.Fatalf("image 0 description = %v, want %q", got, "A lighthouse")
	}
	if snapshot.Images[1].Description != nil {
		t.Fatalf("image 1 description = %q, want nil", *snapshot.Images[1].Description)
	}
}

func TestReadAllOnEmptyCache(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	snapshot, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("snapshot = %+v, want nil for empty cache", snapshot)
	}
}

func TestReadAllCopiesCachedFeed(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	images := []storage.FeedImage{
		{
			ID:          uuid.New(),
			Description: stringPtr("original"),
			URL:         mustParseURL(t, "http://images.example.com/one.png"),
		},
	}
	if err := engine.Replace(context.Background(), images, time.Now().UTC()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	first, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	first.Images[0].URL.Host = "tampered.example.com"
	*first.Images[0].Description = "tampered"

	second, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all again: %v", err)
	}
	if second.Images[0].URL.Host != "images.example.com" {
		t.Fatalf("url host = %q, want %q", second.Images[0].URL.Host, "images.example.com")
	}
	if *second.Images[0].Description != "original" {
		t.Fatalf("description = %q, want %q", *second.Images[0].Description, "original")
	}
}

func TestReplaceCopiesInputFeed(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	images := []storage.FeedImage{
		{
			ID:  uuid.New(),
			URL: mustParseURL(t, "http://images.example.com/one.png"),
		},
	}
	if err := engine.Replace(context.Background(), images, time.Now().UTC()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	images[0].URL.Host = "tampered.example.com"

	snapshot, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if snapshot.Images[0].URL.Host != "images.example.com" {
		t.Fatalf("url host = %q, want %q", snapshot.Images[0].URL.Host, "images.example.com")
	}
}

func TestReplaceWithEmptyFeedClearsCache(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	images := []storage.FeedImage{
		{ID: uuid.New(), URL: mustParseURL(t, "http://images.example.com/one.png")},
	}
	if err := engine.Replace(context.Background(), images, time.Now().UTC()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := engine.Replace(context.Background(), nil, time.Now().UTC()); err != nil {
		t.Fatalf("replace with empty feed: %v", err)
	}

	snapshot, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("snapshot = %+v, want nil after empty replace", snapshot)
	}
}

func TestDeleteAllRemovesFeed(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	images := []storage.FeedImage{
		{ID: uuid.New(), URL: mustParseURL(t, "http://images.example.com/one.png")},
	}
	if err := engine.Replace(context.Background(), images, time.Now().UTC()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := engine.DeleteAll(context.Background()); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	snapshot, err := engine.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("snapshot = %+v, want nil after delete", snapshot)
	}
}

func TestOperationsFailAfterClose(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	if err := engine.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := engine.ReadAll(context.Background()); !storage.IsQueryError(err) {
		t.Fatalf("read error = %v, want QueryError", err)
	}
	err := engine.Replace(context.Background(), nil, time.Now().UTC())
	if !storage.IsQueryError(err) {
		t.Fatalf("replace error = %v, want QueryError", err)
	}
	if err := engine.DeleteAll(context.Background()); !storage.IsQueryError(err) {
		t.Fatalf("delete error = %v, want QueryError", err)
	}
	if err := engine.PrepareSchema(context.Background()); !storage.IsSchemaError(err) {
		t.Fatalf("prepare error = %v, want SchemaError", err)
	}
}

func TestCanceledContextStopsOperations(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.ReadAll(ctx); err != context.Canceled {
		t.Fatalf("read error = %v, want %v", err, context.Canceled)
	}
	if err := engine.Replace(ctx, nil, time.Now().UTC()); err != context.Canceled {
		t.Fatalf("replace error = %v, want %v", err, context.Canceled)
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func stringPtr(s string) *string {
	return &s
}
