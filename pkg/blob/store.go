// Package blob defines the content storage abstraction for file bytes.
//
// Node metadata lives in a tree.Store; the actual file contents live in a
// blob.Store, addressed by the node's StorageRef. Implementations include
// an S3-compatible object store for production and an in-memory store for
// tests.
package blob

import (
	"context"
	"io"
	"time"
)

// Store stores and serves raw file content.
//
// Keys are opaque to the store. Callers generate them; the convention is
// "user-<ownerID>/<uuid>-<filename>" so a bucket remains inspectable and
// keys never collide across re-uploads of the same name.
//
// Downloads are served by URL rather than by streaming through the
// service: PresignedGetURL returns a time-limited link the client fetches
// directly from the backing store.
type Store interface {
	// Put stores the content under key, overwriting any previous object.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// PresignedGetURL returns a URL from which the object can be fetched
	// without further authentication, valid for ttl.
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Healthcheck verifies the backing store is reachable.
	Healthcheck(ctx context.Context) error
}
