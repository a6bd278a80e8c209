// Package sqlite implements the credential store on SQLite, the default
// durable backend for single-instance deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
)

// Store persists credential records in a SQLite table keyed by
// (provider, service, uid).
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) a SQLite-backed credential store
func NewStore(databasePath string) (*Store, error) {
	if databasePath == "" {
		return nil, errors.ConfigError("database path is required")
	}

	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS oauth_credentials (
			provider   TEXT NOT NULL,
			service    TEXT NOT NULL,
			uid        TEXT NOT NULL,
			email      TEXT NOT NULL,
			record     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (provider, service, uid)
		);
		CREATE INDEX IF NOT EXISTS idx_oauth_credentials_email
			ON oauth_credentials (provider, service, email);
	`)
	return err
}

// Get retrieves the most recently written record for an identity
func (s *Store) Get(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string) (*credentials.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM oauth_credentials
		WHERE provider = ? AND service = ? AND email = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`, string(provider), string(service), identity).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("credential")
	}
	if err != nil {
		return nil, errors.InternalError("failed to query credential", err)
	}

	var rec credentials.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.InternalError("failed to decode credential record", err)
	}
	return &rec, nil
}

// Put upserts a record keyed by (provider, service, uid)
func (s *Store) Put(ctx context.Context, rec *credentials.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.InternalError("failed to encode credential record", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO oauth_credentials (provider, service, uid, email, record, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (provider, service, uid) DO UPDATE SET
			email      = excluded.email,
			record     = excluded.record,
			updated_at = CURRENT_TIMESTAMP
	`, string(rec.Provider), string(rec.Service), rec.UID, rec.Email, string(data))
	if err != nil {
		return errors.InternalError("failed to persist credential record", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
