package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the read side of an object store. Daily update files are
// authored elsewhere, so nothing here writes.
//
// Missing objects are reported with an error wrapping goerror.ErrNotFound.
type Storage interface {
	io.Closer

	// GetObject retrieves data and metadata for the object.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	// StatObject returns object metadata without reading its contents.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Bucket is the bucket name, or the base directory for local storage.
	Bucket string
	// Key is the object key.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ETag is the object ETag when provided.
	ETag string
	// ContentType is the object MIME type.
	ContentType string
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time
}
