package syncer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/envsyncd/envsync/internal/vault"
)

// memSecrets is an in-memory SecretStore for tests.
type memSecrets struct {
	mu      sync.Mutex
	secrets map[string]vault.Secret
	setErr  error
	getErr  error
}

func newMemSecrets() *memSecrets {
	return &memSecrets{secrets: make(map[string]vault.Secret)}
}

func (m *memSecrets) put(name string, secret vault.Secret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = secret
}

func (m *memSecrets) Get(_ context.Context, name string) (vault.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return vault.Secret{}, m.getErr
	}
	secret, ok := m.secrets[name]
	if !ok {
		return vault.Secret{}, vault.ErrNotFound
	}
	return secret, nil
}

func (m *memSecrets) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.secrets[name] = vault.Secret{Value: value, Updated: time.Now()}
	return nil
}

func (m *memSecrets) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.secrets))
	for name := range m.secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// memBlobs is an in-memory BlobStore for tests.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string]vault.Blob
	etags int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string]vault.Blob)}
}

func (m *memBlobs) put(name string, blob vault.Blob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = blob
}

func (m *memBlobs) Download(_ context.Context, name string) (vault.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[name]
	if !ok {
		return vault.Blob{}, vault.ErrNotFound
	}
	return blob, nil
}

func (m *memBlobs) Upload(_ context.Context, name string, data []byte, modified time.Time, etag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.blobs[name].ETag
	if etag != "" && etag != current {
		return errors.New("etag mismatch")
	}
	m.etags++
	m.blobs[name] = vault.Blob{
		Data:     append([]byte(nil), data...),
		Modified: modified,
		ETag:     string(rune('a' + m.etags)),
	}
	return nil
}
