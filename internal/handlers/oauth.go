package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/credentials"
)

type beginOAuthRequest struct {
	Provider string `json:"provider"`
	Service  string `json:"service"`
}

type beginOAuthResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// redirectURI builds the callback URL registered with the provider for a
// provider/service pair. The provider enforces an exact match at exchange
// time, so the same helper is used in both legs of the flow.
func (h *Handlers) redirectURI(provider, service string) string {
	return fmt.Sprintf("%s/oauth/%s/%s-redirect", h.config.OAuthRedirectBaseURL, provider, service)
}

// BeginOAuth starts the consent flow and returns the URL the user must
// visit to authorize access.
func (h *Handlers) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	var req beginOAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Provider == "" || req.Service == "" {
		http.Error(w, "provider and service are required", http.StatusBadRequest)
		return
	}

	provider := credentials.Provider(req.Provider)
	service := credentials.Service(req.Service)

	authURL, err := h.manager.BeginAuthorization(provider, service, h.redirectURI(req.Provider, req.Service))
	if err != nil {
		h.logger.Warn("Failed to begin authorization",
			logging.Field{Key: "provider", Value: req.Provider},
			logging.Field{Key: "service", Value: req.Service},
			logging.Field{Key: "error", Value: err})
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(beginOAuthResponse{AuthorizationURL: authURL})
}

// OAuthCallback receives the provider redirect after the user grants or
// denies consent, completes the exchange, and renders a page telling the
// user to close the window.
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider := vars["provider"]
	service := vars["service"]

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("Authorization denied by provider",
			logging.Field{Key: "provider", Value: provider},
			logging.Field{Key: "service", Value: service},
			logging.Field{Key: "error", Value: errParam})
		h.renderErrorPage(w, errParam)
		return
	}

	callbackURL := h.callbackURL(r)
	rec, err := h.manager.CompleteAuthorization(r.Context(),
		credentials.Provider(provider), credentials.Service(service),
		callbackURL, h.redirectURI(provider, service))
	if err != nil {
		h.logger.Error("Failed to complete authorization", err,
			logging.Field{Key: "provider", Value: provider},
			logging.Field{Key: "service", Value: service})
		h.renderErrorPage(w, err.Error())
		return
	}

	h.renderSuccessPage(w, rec.Email)
}

// callbackURL reconstructs the full URL the provider redirected to. TLS
// terminates at the load balancer in most deployments, so a plain-http
// request URL is rewritten to https to match the registered redirect URI.
func (h *Handlers) callbackURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && strings.HasPrefix(h.config.OAuthRedirectBaseURL, "http://") {
		// Local development against a plain-http base URL.
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())
}

func (h *Handlers) renderSuccessPage(w http.ResponseWriter, email string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Complete</title></head>
<body>
<h2>Authorization complete</h2>
<p>Access for %s has been granted. You can close this window.</p>
<button onclick="window.close()">Close window</button>
</body>
</html>`, html.EscapeString(email))
}

func (h *Handlers) renderErrorPage(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body>
<h2>Authorization failed</h2>
<p>%s</p>
<button onclick="window.close()">Close window</button>
</body>
</html>`, html.EscapeString(msg))
}
