// Package storage holds document files in an S3-compatible object store.
// Files are streamed; nothing is staged on local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectExists is returned by Put when the key is already taken. Objects are never overwritten.
var ErrObjectExists = errors.New("object already exists")

// PutObjectOptions describes an upload. Size is the byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports back after a Put.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the blob store used for uploaded documents.
type Storage interface {
	// Put uploads an object under a key that must not exist yet; see ErrObjectExists.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// PublicURL returns the publicly resolvable address of key. It performs no I/O.
	PublicURL(key string) string
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
