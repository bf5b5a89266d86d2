package crud

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for single-entity lookups that match nothing,
// including rows hidden by the active-only filter.
var ErrNotFound = errors.New("object not found")

// StorageError wraps persistence-layer failures (constraint violations,
// connectivity) which propagate to the caller unmodified and opaque.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
