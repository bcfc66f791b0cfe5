package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested object doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrKeyExists is returned by Put when the key is taken and
	// PutOptions.Overwrite is false.
	ErrKeyExists = errors.New("object already exists at this key")

	// ErrInvalidKey is returned for empty, absolute or traversing keys.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrTooLarge is returned when a document exceeds PutOptions.MaxSize.
	ErrTooLarge = errors.New("object exceeds maximum size")

	// ErrAccessDenied is returned when the provider rejects the credentials
	// or the bucket policy forbids the operation.
	ErrAccessDenied = errors.New("access denied")
)

// StorageError records the operation and key of a failed call. errors.Is
// sees through it to the sentinel.
type StorageError struct {
	Op  string // Put, Get, Delete
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Reason classifies err by its sentinel for reports and metric labels. It
// returns "" for nil and "error" for anything unrecognised.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrKeyExists):
		return "key_exists"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	default:
		return "error"
	}
}
