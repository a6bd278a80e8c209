package file

import (
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/store"
)

func init() {
	store.Register("file", func(cfg *config.Config) (store.Store, error) {
		return NewStore(cfg.CredentialsFile)
	})
}
