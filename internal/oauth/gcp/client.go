package gcp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
)

// Client implements the provider integration for Google accounts using the
// standard authorization-code flow. It is configured from a client secret
// JSON file of the kind the Google Cloud console exports.
type Client struct {
	base *oauth2.Config
}

// NewClient parses the client secret JSON and prepares the OAuth2 config.
// Scopes and redirect URI are supplied per request, not baked in here.
func NewClient(secretJSON []byte) (*Client, error) {
	cfg, err := google.ConfigFromJSON(secretJSON)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse client secret JSON: %v", err))
	}
	return &Client{base: cfg}, nil
}

// configFor copies the base config with the request's redirect URI and scopes.
// The base is never mutated so concurrent flows cannot observe each other's
// parameters.
func (c *Client) configFor(redirectURI string, scopes []string) *oauth2.Config {
	cfg := *c.base
	cfg.RedirectURL = redirectURI
	cfg.Scopes = append([]string(nil), scopes...)
	return &cfg
}

// AuthorizationURL builds the consent URL. Offline access is always requested
// so Google issues a refresh token, previously granted scopes are folded in,
// and consent is forced so re-authorization reissues the refresh token.
func (c *Client) AuthorizationURL(redirectURI string, scopes []string) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", errors.InternalError("failed to generate state parameter", err)
	}

	cfg := c.configFor(redirectURI, scopes)
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange completes the code flow from the full callback URL Google
// redirected the user to. An error parameter from Google is surfaced
// verbatim so the caller can show it to the user.
func (c *Client) Exchange(ctx context.Context, callbackURL, redirectURI string, scopes []string) (*credentials.TokenBundle, string, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, "", errors.ValidationError(fmt.Sprintf("invalid callback URL: %v", err))
	}

	query := parsed.Query()
	if errParam := query.Get("error"); errParam != "" {
		return nil, "", errors.ValidationError(errParam)
	}

	code := query.Get("code")
	if code == "" {
		return nil, "", errors.ValidationError("callback URL carries no authorization code")
	}

	cfg := c.configFor(redirectURI, scopes)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", errors.ConnectionError("authorization code exchange failed", err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)

	bundle := &credentials.TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURI:     cfg.Endpoint.TokenURL,
		Scopes:       append([]string(nil), scopes...),
		Expiry:       tok.Expiry,
	}

	return bundle, rawIDToken, nil
}

// Refresh exchanges the bundle's refresh token for a fresh access token.
// The token endpoint and client pair stored in the bundle are used so a
// record survives rotation of the local client secret file.
func (c *Client) Refresh(ctx context.Context, bundle *credentials.TokenBundle) (*credentials.TokenBundle, error) {
	if bundle.RefreshToken == "" {
		return nil, errors.RefreshError("no refresh token available", nil)
	}

	cfg := &oauth2.Config{
		ClientID:     bundle.ClientID,
		ClientSecret: bundle.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: bundle.TokenURI},
	}
	if cfg.ClientID == "" {
		cfg.ClientID = c.base.ClientID
		cfg.ClientSecret = c.base.ClientSecret
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}

	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: bundle.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}

	out := *bundle
	out.AccessToken = tok.AccessToken
	out.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		out.RefreshToken = tok.RefreshToken
	}
	return &out, nil
}

// VerifyIdentityToken validates the raw ID token against Google's public keys
// and this client's audience, and extracts the stable subject and email.
func (c *Client) VerifyIdentityToken(ctx context.Context, rawIDToken string) (*credentials.IdentityClaims, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, c.base.ClientID)
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("ID token verification failed: %v", err))
	}

	email, _ := payload.Claims["email"].(string)

	return &credentials.IdentityClaims{
		Subject: payload.Subject,
		Email:   email,
	}, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
