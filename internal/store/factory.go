package store

import (
	"fmt"
	"sync"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/config"
)

// FactoryFunc builds a concrete store from the loaded configuration.
// Backends register themselves in their init functions so this package
// does not import every driver; main blank-imports the backends it ships.
type FactoryFunc func(cfg *config.Config) (Store, error)

type registry struct {
	factories map[string]FactoryFunc
	mu        sync.RWMutex
}

var defaultRegistry = &registry{factories: make(map[string]FactoryFunc)}

// Register makes a storage backend available under the given name.
func Register(name string, factory FactoryFunc) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.factories[name] = factory
}

// New creates the store selected by cfg.StorageType.
func New(cfg *config.Config) (Store, error) {
	defaultRegistry.mu.RLock()
	factory, ok := defaultRegistry.factories[cfg.StorageType]
	defaultRegistry.mu.RUnlock()

	if !ok {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported storage type: %s", cfg.StorageType))
	}
	return factory(cfg)
}

// AvailableTypes lists the registered backend names.
func AvailableTypes() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	types := make([]string, 0, len(defaultRegistry.factories))
	for name := range defaultRegistry.factories {
		types = append(types, name)
	}
	return types
}
