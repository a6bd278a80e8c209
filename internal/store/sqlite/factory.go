package sqlite

import (
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/store"
)

func init() {
	store.Register("sqlite", func(cfg *config.Config) (store.Store, error) {
		return NewStore(cfg.DatabasePath)
	})
}
