package credentials

import (
	"oauth-gateway/internal/common/errors"
)

// Scope lists are a versioned contract with the provider: changing a list
// invalidates previously granted consents, so every change must ship with a
// re-authorization path for existing users. The registry does not enforce
// this at runtime.
var scopeRegistry = map[Provider]map[Service][]string{
	ProviderGCP: {
		ServiceIMAP: {
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/gmail.labels",
			"https://www.googleapis.com/auth/gmail.metadata",
			"https://www.googleapis.com/auth/gmail.modify",
		},
	},
}

// ScopesFor returns the ordered OAuth scope list required for the given
// provider/service pair. It fails for combinations the registry does not
// recognize.
func ScopesFor(provider Provider, service Service) ([]string, error) {
	services, ok := scopeRegistry[provider]
	if !ok {
		return nil, errors.UnsupportedCombinationError(string(provider), string(service))
	}
	scopes, ok := services[service]
	if !ok {
		return nil, errors.UnsupportedCombinationError(string(provider), string(service))
	}

	// Callers get their own copy so the registry stays immutable
	out := make([]string, len(scopes))
	copy(out, scopes)
	return out, nil
}
