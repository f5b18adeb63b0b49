// Package vault abstracts the remote stores that dotenv values and files
// are synchronized against.
//
// Two store shapes exist: a SecretStore holding one named string value per
// secret, and a BlobStore holding opaque file contents. Both report a
// last-modified timestamp per entry; reconciliation is driven entirely by
// those timestamps, so a backend that cannot produce them is not usable.
//
// Backends: SQLite (local file, useful for air-gapped setups and tests)
// and HTTP (a remote REST service). Both implement the same interfaces and
// are selected from the vault target string by Open.
package vault

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a secret or blob does not exist in the
// store. Callers treat it as "nothing on the remote side", never as a
// transport failure.
var ErrNotFound = errors.New("not found")

// Secret is one named value held by a SecretStore.
type Secret struct {
	// Value is the secret's current content.
	Value string

	// Updated is when the value was last written.
	Updated time.Time
}

// Blob is one file's content held by a BlobStore.
type Blob struct {
	// Data is the blob's content.
	Data []byte

	// Modified is when the content was last written, as recorded by the
	// uploader (not the store's own receive time).
	Modified time.Time

	// ETag identifies this revision for optimistic concurrency.
	ETag string
}

// SecretStore reads and writes named string secrets.
type SecretStore interface {
	// Get returns the secret stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) (Secret, error)

	// Set stores value under name, replacing any existing secret.
	Set(ctx context.Context, name, value string) error

	// List returns the names of all stored secrets.
	List(ctx context.Context) ([]string, error)
}

// BlobStore reads and writes named blobs.
type BlobStore interface {
	// Download returns the blob stored under name, or ErrNotFound.
	Download(ctx context.Context, name string) (Blob, error)

	// Upload stores data under name with the given modified time. A
	// non-empty etag must match the stored revision's etag or the upload
	// fails; an empty etag overwrites unconditionally.
	Upload(ctx context.Context, name string, data []byte, modified time.Time, etag string) error
}
