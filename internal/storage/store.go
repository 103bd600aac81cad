// Package storage defines the object-store capability the gateway is built on
// and the error classification shared by every backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ObjectStore is a bucket/key addressed blob store.
type ObjectStore interface {
	// Put stores body under bucket/key. contentType may be empty.
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error

	// Get returns the whole object.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// GetRange returns a reader over the inclusive byte span [start, end].
	// The caller must close it.
	GetRange(ctx context.Context, bucket, key string, start, end uint64) (io.ReadCloser, error)

	Head(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// List returns every object whose key starts with prefix, in key order.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

var (
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrInvalidRange   = errors.New("storage: invalid range")
	ErrCredentials    = errors.New("storage: credentials not configured")
)

// Error carries the failed operation and object coordinates. Err is either one
// of the sentinels above or the backend's own error.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

// IsClientError reports whether err came from a storage backend but matches
// none of the classified sentinels.
func IsClientError(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return !errors.Is(err, ErrBucketNotFound) &&
		!errors.Is(err, ErrObjectNotFound) &&
		!errors.Is(err, ErrAccessDenied) &&
		!errors.Is(err, ErrInvalidRange) &&
		!errors.Is(err, ErrCredentials)
}
