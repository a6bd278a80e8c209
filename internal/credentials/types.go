// Package credentials defines the canonical credential record persisted for
// each authorized identity, the provider/service scope registry, and the
// formatter that normalizes provider token responses into records.
package credentials

import (
	"fmt"
	"time"
)

// Provider identifies an OAuth provider.
type Provider string

const (
	// ProviderGCP is the Google Cloud OAuth provider
	ProviderGCP Provider = "gcp"
)

// Service identifies a provider service credentials grant access to.
type Service string

const (
	// ServiceIMAP is mailbox access over IMAP
	ServiceIMAP Service = "imap"
)

// TokenBundle carries the raw token material returned by a provider.
// Every field is preserved verbatim through formatting and persistence.
type TokenBundle struct {
	// AccessToken is the short-lived token used for API authentication
	AccessToken string `json:"token"`
	// RefreshToken is used to mint new access tokens without re-consent
	RefreshToken string `json:"refresh_token,omitempty"`
	// ClientID is the OAuth client the tokens were issued to
	ClientID string `json:"client_id,omitempty"`
	// ClientSecret is the OAuth client secret
	ClientSecret string `json:"client_secret,omitempty"`
	// TokenURI is the provider token endpoint
	TokenURI string `json:"token_uri,omitempty"`
	// Scopes is the ordered list of scopes the user consented to
	Scopes []string `json:"scopes,omitempty"`
	// Expiry is when the access token expires, zero for non-expiring
	Expiry time.Time `json:"expiry"`
	// Account is the provider account label, if any
	Account string `json:"account,omitempty"`
	// RAPTToken is Google's reauth proof token, if issued
	RAPTToken string `json:"rapt_token,omitempty"`
	// UniverseDomain is the Google universe the credential belongs to
	UniverseDomain string `json:"universe_domain,omitempty"`
}

// IsExpired returns true if the access token is expired or will expire soon.
// Tokens are considered expired 5 minutes before their actual expiry time to
// provide a buffer for request processing. Tokens with zero expiry are
// considered non-expiring.
func (b *TokenBundle) IsExpired() bool {
	if b.Expiry.IsZero() {
		return false
	}
	return time.Now().After(b.Expiry.Add(-5 * time.Minute))
}

// Record is the canonical persisted credential unit for one
// (provider, service, identity) combination. Records are created at
// code-exchange time and rewritten whole on every successful refresh;
// they are never partially updated.
type Record struct {
	// Email is the subject identity, used as the lookup key together
	// with provider and service
	Email string `json:"email"`
	// UID is the provider-stable subject identifier, unique per
	// (provider, identity)
	UID string `json:"uid"`
	// Provider is the OAuth provider the record belongs to
	Provider Provider `json:"provider"`
	// Service is the provider service the credentials grant access to.
	// Must be a service the scope registry recognizes for the provider.
	Service Service `json:"service"`
	// Creds is the raw token material
	Creds TokenBundle `json:"creds"`
	// Extras holds provider-specific side-channel data, opaque here
	Extras map[string]string `json:"extras"`
}

// Key returns the storage key for the record: (provider, service, uid).
func (r *Record) Key() string {
	return fmt.Sprintf("%s:%s:%s", r.Provider, r.Service, r.UID)
}

// IDToken returns the raw identity token captured at exchange time,
// or empty if the record carries none.
func (r *Record) IDToken() string {
	return r.Extras["id_token"]
}
