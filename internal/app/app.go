package app

import (
	"os"

	"github.com/gorilla/mux"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/handlers"
	"oauth-gateway/internal/middleware"
	"oauth-gateway/internal/oauth"
	"oauth-gateway/internal/oauth/gcp"
	"oauth-gateway/internal/store"
	_ "oauth-gateway/internal/store/file"
	_ "oauth-gateway/internal/store/redis"
	_ "oauth-gateway/internal/store/sqlite"
)

// App holds the wired application dependencies.
type App struct {
	Config  *config.Config
	Store   store.Store
	Manager *oauth.Manager
	Router  *mux.Router
	Logger  logging.Logger
}

// New builds the application: store backend, provider clients, the
// credential manager, and the HTTP routes.
func New(cfg *config.Config) (*App, error) {
	logger := logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"})

	st, err := store.New(cfg)
	if err != nil {
		return nil, err
	}

	secretJSON, err := os.ReadFile(cfg.GCPClientSecretFile)
	if err != nil {
		st.Close()
		return nil, errors.ConfigError("failed to read GCP client secret file: " + err.Error())
	}

	gcpClient, err := gcp.NewClient(secretJSON)
	if err != nil {
		st.Close()
		return nil, err
	}

	manager := oauth.NewManager(st, logger)
	manager.RegisterClient("gcp", gcpClient)

	h := handlers.New(manager, cfg, logger)
	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	h.RegisterRoutes(router)

	logger.Info("Application initialized",
		logging.Field{Key: "storage_type", Value: cfg.StorageType},
		logging.Field{Key: "providers", Value: []string{"gcp"}})

	return &App{
		Config:  cfg,
		Store:   st,
		Manager: manager,
		Router:  router,
		Logger:  logger,
	}, nil
}

// Cleanup joins outstanding credential persists and releases the store.
func (a *App) Cleanup() {
	if a.Manager != nil {
		if err := a.Manager.Close(); err != nil {
			a.Logger.Warn("Error closing credential manager", logging.Field{Key: "error", Value: err})
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("Error closing store", logging.Field{Key: "error", Value: err})
		}
	}
}
