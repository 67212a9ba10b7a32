// Package cartstore provides the persistence backends for shopping carts.
package cartstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/infrastructure/config"
)

// New returns the storage selected by cfg.Storage. client is only used by
// the redis backend and may be nil otherwise.
func New(cfg config.CartConfig, client redis.UniversalClient) (cart.Storage, error) {
	switch cfg.Storage {
	case "file":
		return NewFileStorage(cfg.Directory)
	case "redis":
		if isNilClient(client) {
			return nil, fmt.Errorf("cart storage %q requires a redis client", cfg.Storage)
		}
		return NewRedisStorage(client, cfg.TTL), nil
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown cart storage %q", cfg.Storage)
	}
}

// isNilClient also catches a nil *redis.Client stored in the interface
func isNilClient(client redis.UniversalClient) bool {
	switch c := client.(type) {
	case nil:
		return true
	case *redis.Client:
		return c == nil
	case *redis.ClusterClient:
		return c == nil
	case *redis.Ring:
		return c == nil
	default:
		return false
	}
}
