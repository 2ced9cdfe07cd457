package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTableName indicates a resolved table name failed the
	// identifier allow-list and must not reach a DDL statement.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrTableNotFound indicates a destination table does not exist.
	ErrTableNotFound = errors.New("table not found")

	// ErrObjectNotFound indicates an object was not found in the bucket.
	ErrObjectNotFound = errors.New("object not found")
)

// StorageError represents a failed object-store operation.
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage operation %s failed on bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed for key %s on bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
