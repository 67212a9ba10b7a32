// Package cart keeps shopper carts in sync with their persisted copies.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"go.uber.org/zap"
)

// Store is one session's cart backed by a cart.Storage. The cart is read on
// first use and written back after every mutation. A Store is not safe for
// concurrent use; Service serializes access per session.
type Store struct {
	storage cart.Storage
	key     string
	logger  *zap.Logger

	cart   *cart.Cart
	loaded bool
}

// NewStore returns a store for session. An empty session uses the bare
// "cart" key.
func NewStore(storage cart.Storage, session string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, key: cart.KeyFor(session), logger: logger}
}

// Key returns the storage key
func (s *Store) Key() string {
	return s.key
}

// Cart returns the current cart, rehydrating it on first call. Missing or
// unreadable data yields an empty cart.
func (s *Store) Cart(ctx context.Context) *cart.Cart {
	if s.loaded {
		return s.cart
	}
	s.loaded = true
	s.cart = &cart.Cart{}

	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, cart.ErrNoCart) {
			s.logger.Warn("Failed to load cart, starting empty", zap.String("key", s.key), zap.Error(err))
		}
		return s.cart
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("Discarding unreadable cart", zap.String("key", s.key), zap.Error(err))
		return s.cart
	}
	s.cart = &c
	return s.cart
}

// Add adds one unit of p
func (s *Store) Add(ctx context.Context, p catalog.Product) error {
	s.Cart(ctx).Add(p)
	return s.persist(ctx)
}

// Remove deletes the product's line
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.Cart(ctx).Remove(productID)
	return s.persist(ctx)
}

// UpdateQuantity sets the product's quantity; quantity <= 0 removes it
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.Cart(ctx).UpdateQuantity(productID, quantity)
	return s.persist(ctx)
}

// TotalCount returns the sum of line quantities
func (s *Store) TotalCount(ctx context.Context) int {
	return s.Cart(ctx).TotalCount()
}

// persist writes the whole cart. On failure only this Store's copy keeps the
// mutation; the next Store for the session reloads the last saved cart.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Error("Failed to persist cart", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("persist cart %s: %w", s.key, err)
	}
	return nil
}
