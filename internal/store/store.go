// Package store abstracts the object storage backend holding media,
// manifests, and the catalog. Builders and the verifier consume the Store
// interface; the S3, directory, and in-memory implementations behind it are
// interchangeable and safe for concurrent reuse by worker pools.
package store

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the requested key is absent from the store.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes store object metadata without its content.
type ObjectInfo struct {
	Key         string
	LengthBytes int64
}

// Store is the narrow object-store surface the builder and verifier need.
type Store interface {
	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get opens the object's byte stream. Absent keys fail with
	// ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put writes the object, overwriting any previous content.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// Head reports the object's size without fetching its content.
	Head(ctx context.Context, key string) (ObjectInfo, error)
	// PublicURL derives the object's public URL. It is a pure string
	// computation; whether the URL is actually reachable is governed by
	// the store's own access policy.
	PublicURL(key string) string
}
