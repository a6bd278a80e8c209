package store

import (
	"context"
	"sync"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
)

// MemoryStore is an in-memory credential store for tests and ephemeral use.
// Records are indexed by (provider, service, uid) with a secondary identity
// index, mirroring the durable backends.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*credentials.Record
	byEmail map[string]string
}

// NewMemoryStore creates a new in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*credentials.Record),
		byEmail: make(map[string]string),
	}
}

func identityKey(provider credentials.Provider, service credentials.Service, identity string) string {
	return string(provider) + ":" + string(service) + ":" + identity
}

// Get retrieves a record by identity
func (s *MemoryStore) Get(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string) (*credentials.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byEmail[identityKey(provider, service, identity)]
	if !ok {
		return nil, errors.NotFoundError("credential")
	}
	rec, ok := s.records[key]
	if !ok {
		return nil, errors.NotFoundError("credential")
	}

	// Hand out a copy so callers cannot mutate stored state
	cp := *rec
	cp.Extras = make(map[string]string, len(rec.Extras))
	for k, v := range rec.Extras {
		cp.Extras[k] = v
	}
	return &cp, nil
}

// Put stores a record with overwrite semantics
func (s *MemoryStore) Put(ctx context.Context, rec *credentials.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.Extras = make(map[string]string, len(rec.Extras))
	for k, v := range rec.Extras {
		cp.Extras[k] = v
	}

	s.records[rec.Key()] = &cp
	s.byEmail[identityKey(rec.Provider, rec.Service, rec.Email)] = rec.Key()
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
