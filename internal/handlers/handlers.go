package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/credentials"
)

// Authorizer is the slice of the credential manager the HTTP boundary
// needs: starting and completing the consent flow.
type Authorizer interface {
	BeginAuthorization(provider credentials.Provider, service credentials.Service, redirectURI string) (string, error)
	CompleteAuthorization(ctx context.Context, provider credentials.Provider, service credentials.Service, callbackURL, redirectURI string) (*credentials.Record, error)
}

type Handlers struct {
	manager Authorizer
	config  *config.Config
	logger  logging.Logger
}

func New(manager Authorizer, cfg *config.Config, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		manager: manager,
		config:  cfg,
		logger:  logger,
	}
}

// RegisterRoutes attaches all handlers to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/oauth", h.BeginOAuth).Methods("POST")
	r.HandleFunc("/oauth/{provider}/{service}-redirect", h.OAuthCallback).Methods("GET")
}

// statusForError maps the error taxonomy onto HTTP status codes. Caller
// errors get 4xx, everything else is a 500.
func statusForError(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeUnsupported, errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeMissingIdentity:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
