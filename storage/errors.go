package storage

import (
	"errors"
	"fmt"
)

// OpenError reports that the backing database file could not be opened or
// created, for example because the path is invalid or not writable.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open cache database %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// NewOpenError creates an OpenError for the given database path.
func NewOpenError(path string, err error) *OpenError {
	return &OpenError{Path: path, Err: err}
}

// IsOpenError reports whether err is an OpenError (even when wrapped).
func IsOpenError(err error) bool {
	var openErr *OpenError
	return errors.As(err, &openErr)
}

// SchemaError reports that the cache table could not be created. Outside of
// bugs this signals a corrupted or incompatible existing database file.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("prepare cache schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// NewSchemaError creates a SchemaError wrapping err.
func NewSchemaError(err error) *SchemaError {
	return &SchemaError{Err: err}
}

// IsSchemaError reports whether err is a SchemaError (even when wrapped).
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// QueryError reports a failed engine operation: a statement that could not
// be prepared or executed, or a stored row that could not be decoded back
// into a FeedImage.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError creates a QueryError for the named operation.
func NewQueryError(op string, err error) *QueryError {
	return &QueryError{Op: op, Err: err}
}

// IsQueryError reports whether err is a QueryError (even when wrapped).
func IsQueryError(err error) bool {
	var queryErr *QueryError
	return errors.As(err, &queryErr)
}
