package cart

import (
	"context"
	"errors"
)

// StorageKey is the key a cart is persisted under. Server-side carts are
// namespaced per session as "cart:<session>".
const StorageKey = "cart"

// ErrNoCart is returned by Storage.Load when nothing is stored under the key
var ErrNoCart = errors.New("cart: nothing stored")

// Storage persists serialized carts under string keys
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// KeyFor returns the storage key for a cart session
func KeyFor(session string) string {
	if session == "" {
		return StorageKey
	}
	return StorageKey + ":" + session
}
