package cartstore

import (
	"context"
	"sync"

	"github.com/sari-store/storefront/internal/domain/cart"
)

// MemoryStorage keeps carts in process memory
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Load returns a copy of the document stored under key
func (s *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, cart.ErrNoCart
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key
func (s *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

var _ cart.Storage = (*MemoryStorage)(nil)
