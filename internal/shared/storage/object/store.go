package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the contract the vault needs from the storage provider.
type ObjectStore interface {
	// Put uploads the reader contents under the given key and reports the
	// number of bytes stored.
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// SignedURL returns a short-lived URL granting read access to the object.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
