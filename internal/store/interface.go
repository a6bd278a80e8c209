// Package store defines the credential store contract and a factory over the
// available backends. Records are keyed by (provider, service, uid) and read
// back by subject identity; writes are whole-record overwrites and must be
// durable before Put returns.
package store

import (
	"context"

	"oauth-gateway/internal/credentials"
)

// Store is the persistence contract for credential records.
type Store interface {
	// Get retrieves the record for an identity, scoped to a provider and
	// service. Returns a not_found error when no record exists; the caller
	// must re-run authorization in that case.
	Get(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string) (*credentials.Record, error)

	// Put writes a record with overwrite semantics, keyed by
	// (provider, service, uid). The write is durable before Put returns.
	Put(ctx context.Context, rec *credentials.Record) error

	// Close releases any resources held by the store
	Close() error
}
