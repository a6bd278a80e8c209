// Package file implements the debug credential store: a single JSON document
// on disk matching the credential record's shape. It holds at most one record
// per deployment and exists for local development; production deployments use
// the sqlite or redis backends.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
)

// Store persists one credential record as a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a file-backed credential store at the given path
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.ConfigError("credentials file path is required")
	}
	return &Store{path: path}, nil
}

// Get reads the stored record and returns it if it matches the requested
// provider, service and identity.
func (s *Store) Get(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string) (*credentials.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("credential")
		}
		return nil, errors.InternalError("failed to read credentials file", err)
	}

	var rec credentials.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.InternalError("failed to decode credentials file", err)
	}

	if rec.Provider != provider || rec.Service != service || rec.Email != identity {
		return nil, errors.NotFoundError("credential")
	}

	return &rec, nil
}

// Put overwrites the stored record. The write goes to a temporary file which
// is synced and renamed into place, so a crash never leaves a torn document.
func (s *Store) Put(ctx context.Context, rec *credentials.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return errors.InternalError("failed to encode credential record", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return errors.InternalError("failed to create temp credentials file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.InternalError("failed to write credentials file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.InternalError("failed to sync credentials file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.InternalError("failed to close credentials file", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.InternalError("failed to replace credentials file", err)
	}
	return nil
}

// Close is a no-op for the file store
func (s *Store) Close() error {
	return nil
}
