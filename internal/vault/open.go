package vault

import "strings"

// Store is a full vault backend: secrets plus blobs.
type Store interface {
	SecretStore
	BlobStore

	// Close releases backend resources.
	Close() error
}

// Open selects a backend from the vault target string: an http or https
// URL opens the HTTP backend, anything else is treated as a SQLite
// database path.
func Open(target string) (Store, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return NewHTTP(target, nil)
	}
	return OpenSQLite(target)
}
