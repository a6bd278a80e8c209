package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/credentials"
	"oauth-gateway/internal/store"
)

// OnRefreshFailure controls what GetCredentials does when a stored credential
// is expired and the refresh attempt fails.
type OnRefreshFailure int

const (
	// RaiseOnRefreshFailure propagates the refresh error to the caller.
	RaiseOnRefreshFailure OnRefreshFailure = iota
	// ReturnNilOnRefreshFailure swallows the refresh error and returns no
	// record, letting the caller treat the identity as unauthorized.
	ReturnNilOnRefreshFailure
)

// Manager drives the credential lifecycle for every registered provider:
// building consent URLs, completing the authorization-code exchange, and
// serving stored credentials with transparent refresh on expiry.
//
// Refreshes for the same record are serialized through singleflight so
// concurrent callers share one provider round trip. Refreshed bundles are
// persisted in the background; Close waits for those writes to finish.
type Manager struct {
	clients map[credentials.Provider]Client
	store   store.Store
	logger  logging.Logger

	flight   singleflight.Group
	persists sync.WaitGroup
}

// NewManager creates a lifecycle manager backed by the given store.
func NewManager(st store.Store, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Manager{
		clients: make(map[credentials.Provider]Client),
		store:   st,
		logger:  logger,
	}
}

// RegisterClient binds a provider integration to the manager. Registering the
// same provider twice replaces the previous client.
func (m *Manager) RegisterClient(provider credentials.Provider, client Client) {
	m.clients[provider] = client
}

func (m *Manager) clientFor(provider credentials.Provider, service credentials.Service) (Client, error) {
	client, ok := m.clients[provider]
	if !ok {
		return nil, errors.UnsupportedCombinationError(string(provider), string(service))
	}
	return client, nil
}

// BeginAuthorization returns the consent URL the end user must visit to
// authorize the provider/service pair. The scope set is fixed per pair; an
// unsupported pair is rejected before any provider call.
func (m *Manager) BeginAuthorization(provider credentials.Provider, service credentials.Service, redirectURI string) (string, error) {
	client, err := m.clientFor(provider, service)
	if err != nil {
		return "", err
	}

	scopes, err := credentials.ScopesFor(provider, service)
	if err != nil {
		return "", err
	}

	authURL, err := client.AuthorizationURL(redirectURI, scopes)
	if err != nil {
		return "", err
	}

	m.logger.Info("Built authorization URL",
		logging.Field{Key: "provider", Value: string(provider)},
		logging.Field{Key: "service", Value: string(service)})

	return authURL, nil
}

// CompleteAuthorization finishes the authorization-code flow. It exchanges
// the code carried in callbackURL for a token bundle, verifies the ID token
// to pin the credential to a stable identity, and persists the record.
//
// A token response without an ID token is rejected: without verified identity
// claims the credential cannot be keyed, so nothing is stored.
func (m *Manager) CompleteAuthorization(ctx context.Context, provider credentials.Provider, service credentials.Service, callbackURL, redirectURI string) (*credentials.Record, error) {
	client, err := m.clientFor(provider, service)
	if err != nil {
		return nil, err
	}

	scopes, err := credentials.ScopesFor(provider, service)
	if err != nil {
		return nil, err
	}

	bundle, rawIDToken, err := client.Exchange(ctx, callbackURL, redirectURI, scopes)
	if err != nil {
		return nil, err
	}

	if rawIDToken == "" {
		return nil, errors.MissingIdentityTokenError()
	}

	claims, err := client.VerifyIdentityToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	rec, err := credentials.Format(*claims, *bundle, provider, service, map[string]string{
		"id_token": rawIDToken,
	})
	if err != nil {
		return nil, err
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return nil, err
	}

	m.logger.Info("Authorization completed",
		logging.Field{Key: "provider", Value: string(provider)},
		logging.Field{Key: "service", Value: string(service)},
		logging.Field{Key: "email", Value: rec.Email})

	return rec, nil
}

// GetCredentials returns the stored record for the identity, refreshing the
// token bundle first when it has expired. A refreshed bundle is returned to
// the caller immediately; the store is updated in the background and the
// write is joined on Close.
//
// The identity may be either the account email or the provider subject ID,
// whichever the store indexes. When no record exists a not_found error is
// returned regardless of policy.
func (m *Manager) GetCredentials(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string, policy OnRefreshFailure) (*credentials.Record, error) {
	rec, err := m.store.Get(ctx, provider, service, identity)
	if err != nil {
		return nil, err
	}

	if !rec.Creds.IsExpired() {
		return rec, nil
	}

	refreshed, err := m.refresh(ctx, rec)
	if err != nil {
		if policy == ReturnNilOnRefreshFailure {
			m.logger.Warn("Credential refresh failed, returning no credentials",
				logging.Field{Key: "provider", Value: string(provider)},
				logging.Field{Key: "service", Value: string(service)},
				logging.Field{Key: "identity", Value: identity},
				logging.Field{Key: "error", Value: err})
			return nil, nil
		}
		return nil, err
	}

	return refreshed, nil
}

// refresh exchanges the record's refresh token for a new bundle. Concurrent
// refreshes of the same record collapse into a single provider call; every
// waiter receives the same refreshed record. The store is only mutated on
// success, so a failed refresh leaves the previous record intact.
func (m *Manager) refresh(ctx context.Context, rec *credentials.Record) (*credentials.Record, error) {
	v, err, _ := m.flight.Do(rec.Key(), func() (interface{}, error) {
		client, err := m.clientFor(rec.Provider, rec.Service)
		if err != nil {
			return nil, err
		}

		started := time.Now()
		bundle, err := client.Refresh(ctx, &rec.Creds)
		if err != nil {
			return nil, errors.RefreshError("failed to refresh access token", err)
		}

		// Providers routinely omit the refresh token from refresh
		// responses; the original grant's token stays valid.
		if bundle.RefreshToken == "" {
			bundle.RefreshToken = rec.Creds.RefreshToken
		}

		refreshed, err := m.updateCredentials(rec, bundle)
		if err != nil {
			return nil, err
		}

		m.logger.Info("Access token refreshed",
			logging.Field{Key: "provider", Value: string(rec.Provider)},
			logging.Field{Key: "service", Value: string(rec.Service)},
			logging.Field{Key: "email", Value: rec.Email},
			logging.Field{Key: "duration", Value: time.Since(started)},
			logging.Field{Key: "new_expiry", Value: refreshed.Creds.Expiry})

		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*credentials.Record), nil
}

// updateCredentials rebuilds the record around the new bundle and schedules
// the persist. The write runs on a background context so a caller's deadline
// does not abort a durable update that already succeeded at the provider.
func (m *Manager) updateCredentials(rec *credentials.Record, bundle *credentials.TokenBundle) (*credentials.Record, error) {
	claims := credentials.IdentityClaims{Subject: rec.UID, Email: rec.Email}

	refreshed, err := credentials.Format(claims, *bundle, rec.Provider, rec.Service, rec.Extras)
	if err != nil {
		return nil, err
	}

	m.persists.Add(1)
	go func() {
		defer m.persists.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := m.store.Put(ctx, refreshed); err != nil {
			m.logger.Error("Failed to persist refreshed credentials", err,
				logging.Field{Key: "provider", Value: string(refreshed.Provider)},
				logging.Field{Key: "service", Value: string(refreshed.Service)},
				logging.Field{Key: "email", Value: refreshed.Email})
		}
	}()

	return refreshed, nil
}

// Flush blocks until all in-flight background persists have completed.
func (m *Manager) Flush() {
	m.persists.Wait()
}

// Close joins outstanding background persists. It does not close the store;
// the store's owner does that after the manager is done with it.
func (m *Manager) Close() error {
	m.Flush()
	return nil
}
