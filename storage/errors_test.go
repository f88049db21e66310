package storage

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestOpenError(t *testing.T) {
	cause := stdErrors.New("permission denied")
	err := NewOpenError("/var/cache/feed.db", cause)

	expected := `open cache database "/var/cache/feed.db": permission denied`
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsOpenError(err) {
		t.Fatalf("IsOpenError returned false for OpenError")
	}

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected OpenError to unwrap to its cause")
	}

	wrapped := fmt.Errorf("initialize store: %w", err)
	if !IsOpenError(wrapped) {
		t.Fatalf("IsOpenError returned false for wrapped OpenError")
	}
}

func TestSchemaError(t *testing.T) {
	cause := stdErrors.New("file is not a database")
	err := NewSchemaError(cause)

	expected := "prepare cache schema: file is not a database"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsSchemaError(err) {
		t.Fatalf("IsSchemaError returned false for SchemaError")
	}

	wrapped := stdErrors.Join(err)
	if !IsSchemaError(wrapped) {
		t.Fatalf("IsSchemaError returned false for wrapped SchemaError")
	}
}

func TestQueryError(t *testing.T) {
	cause := stdErrors.New("no such table: FeedImageCache")
	err := NewQueryError("read cached feed", cause)

	expected := "read cached feed: no such table: FeedImageCache"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsQueryError(err) {
		t.Fatalf("IsQueryError returned false for QueryError")
	}

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected QueryError to unwrap to its cause")
	}

	wrapped := fmt.Errorf("retrieve: %w", err)
	if !IsQueryError(wrapped) {
		t.Fatalf("IsQueryError returned false for wrapped QueryError")
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	queryErr := NewQueryError("delete cached feed", stdErrors.New("disk I/O error"))

	if IsOpenError(queryErr) {
		t.Fatalf("IsOpenError returned true for QueryError")
	}
	if IsSchemaError(queryErr) {
		t.Fatalf("IsSchemaError returned true for QueryError")
	}
}
