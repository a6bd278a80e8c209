package oauth

import (
	"context"

	"oauth-gateway/internal/credentials"
)

// Client is the capability surface a provider integration must expose to the
// lifecycle manager. Implementations wrap a concrete provider SDK (the gcp
// subpackage wraps golang.org/x/oauth2 and Google's ID-token verifier); the
// manager stays provider-agnostic and drives everything through this interface.
type Client interface {
	// AuthorizationURL builds the URL the end user visits to grant consent.
	// The URL must request offline access so a refresh token is issued.
	AuthorizationURL(redirectURI string, scopes []string) (string, error)

	// Exchange completes the authorization-code flow. callbackURL is the full
	// URL the provider redirected the user to, including the code or error
	// query parameters. On success it returns the issued token bundle and the
	// raw OpenID Connect ID token; rawIDToken is empty when the provider did
	// not include one.
	Exchange(ctx context.Context, callbackURL, redirectURI string, scopes []string) (bundle *credentials.TokenBundle, rawIDToken string, err error)

	// Refresh obtains a fresh access token using the bundle's refresh token.
	// The returned bundle may omit the refresh token; callers carry the old
	// one forward in that case.
	Refresh(ctx context.Context, bundle *credentials.TokenBundle) (*credentials.TokenBundle, error)

	// VerifyIdentityToken validates a raw ID token and extracts the stable
	// subject identifier and email claims.
	VerifyIdentityToken(ctx context.Context, rawIDToken string) (*credentials.IdentityClaims, error)
}
