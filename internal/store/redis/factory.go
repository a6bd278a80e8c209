package redis

import (
	"oauth-gateway/internal/config"
	"oauth-gateway/internal/store"
)

func init() {
	store.Register("redis", func(cfg *config.Config) (store.Store, error) {
		return NewStore(&Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
		})
	})
}
