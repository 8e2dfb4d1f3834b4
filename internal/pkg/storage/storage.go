package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a stored object
type FileInfo struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Storage defines the interface for property media storage backends
type Storage interface {
	// Put stores an object under the given key
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key. Returns nil if the object doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// PresignPut returns a presigned upload URL valid for the given duration
	PresignPut(ctx context.Context, key string, contentType string, expires time.Duration) (string, error)

	// GetURL returns the public URL for an object key
	GetURL(key string) string
}
