// Package storage abstracts where finished renders and project files
// live: the local filesystem or a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Storage defines the interface for persisting and retrieving named
// objects such as exported videos and serialized projects.
type Storage interface {
	// Save writes the reader's contents under name and returns the
	// location of the stored object (a path or a URL).
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Open returns a reader for a stored object.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether an object with the given name is stored.
	Exists(ctx context.Context, name string) bool

	// List returns the names of stored objects with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a stored object.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the backend.
	Close() error
}
