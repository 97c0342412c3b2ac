package persist

import (
	"errors"
	"fmt"
)

// ErrWriterClosed is returned by Flush when the writer stopped before the
// pending snapshots were written.
var ErrWriterClosed = errors.New("writer closed")

// ErrInvalidUTF8 is returned by Save for text JSON cannot hold unchanged.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// SerializationError reports stored data that could not be encoded or decoded.
type SerializationError struct {
	Key string
	Op  string // "encode" or "decode"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// StorageIOError reports a failed read or write of the underlying store.
type StorageIOError struct {
	Key string
	Op  string // "read" or "write"
	Err error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageIOError) Unwrap() error {
	return e.Err
}

// ValidationError represents a schema violation with its location.
type ValidationError struct {
	Path string // dot path to the error location, e.g. [2].title
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
