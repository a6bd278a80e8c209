package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/credentials"
	"oauth-gateway/internal/store"
)

const (
	credentialKeyPrefix = "oauth:credential:"
	identityKeyPrefix   = "oauth:identity:"
)

type Config struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// Store persists credential records in Redis. Records are keyed by
// provider/service/uid; a secondary identity key maps the account email
// to the owning uid so lookups by either handle resolve the same record.
type Store struct {
	rdb *redis.Client
}

func NewStore(config *Config) (*Store, error) {
	if config == nil {
		return nil, errors.ConfigError("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.ConnectionError("failed to connect to Redis", err)
	}

	return &Store{rdb: rdb}, nil
}

func credentialKey(provider credentials.Provider, service credentials.Service, uid string) string {
	return fmt.Sprintf("%s%s:%s:%s", credentialKeyPrefix, provider, service, uid)
}

func identityKey(provider credentials.Provider, service credentials.Service, email string) string {
	return fmt.Sprintf("%s%s:%s:%s", identityKeyPrefix, provider, service, email)
}

func (s *Store) Put(ctx context.Context, rec *credentials.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.InternalError("failed to marshal credential record", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, credentialKey(rec.Provider, rec.Service, rec.UID), data, 0)
	pipe.Set(ctx, identityKey(rec.Provider, rec.Service, rec.Email), rec.UID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.ConnectionError("failed to store credential record", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, provider credentials.Provider, service credentials.Service, identity string) (*credentials.Record, error) {
	uid, err := s.rdb.Get(ctx, identityKey(provider, service, identity)).Result()
	if err == redis.Nil {
		return nil, errors.NotFoundError(fmt.Sprintf("credentials for %s/%s/%s", provider, service, identity))
	}
	if err != nil {
		return nil, errors.ConnectionError("failed to resolve credential identity", err)
	}

	data, err := s.rdb.Get(ctx, credentialKey(provider, service, uid)).Result()
	if err == redis.Nil {
		// Identity index points at a record that no longer exists.
		return nil, errors.NotFoundError(fmt.Sprintf("credentials for %s/%s/%s", provider, service, identity))
	}
	if err != nil {
		return nil, errors.ConnectionError("failed to read credential record", err)
	}

	var rec credentials.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.InternalError("failed to unmarshal credential record", err)
	}

	return &rec, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

var _ store.Store = (*Store)(nil)
