package credentials

import (
	"oauth-gateway/internal/common/errors"
)

// IdentityClaims holds the verified subject identity extracted from a
// provider identity token.
type IdentityClaims struct {
	// Subject is the issuer-stable subject identifier ("sub" claim)
	Subject string
	// Email is the subject's email address
	Email string
}

// Format normalizes a token exchange result plus verified identity claims
// into one canonical credential record. Every TokenBundle field is carried
// verbatim and extras are merged additively; caller-supplied keys are never
// dropped. It fails when the claims carry no usable identity, since a
// record without a subject cannot be keyed.
func Format(claims IdentityClaims, bundle TokenBundle, provider Provider, service Service, extras map[string]string) (*Record, error) {
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.MissingIdentityTokenError()
	}

	merged := make(map[string]string, len(extras))
	for k, v := range extras {
		merged[k] = v
	}

	return &Record{
		Email:    claims.Email,
		UID:      claims.Subject,
		Provider: provider,
		Service:  service,
		Creds:    bundle,
		Extras:   merged,
	}, nil
}
