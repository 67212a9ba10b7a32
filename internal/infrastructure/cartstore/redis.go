package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sari-store/storefront/internal/domain/cart"
)

const redisKeyPrefix = "storefront:"

// RedisStorage stores carts as Redis strings. Every save refreshes the TTL,
// so an idle cart expires ttl after its last change.
type RedisStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStorage wraps an existing client. A zero ttl keeps carts forever.
func NewRedisStorage(client redis.UniversalClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

// Load reads the document stored under key
func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %q: %w", key, err)
	}
	return data, nil
}

// Save replaces the document under key
func (s *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %q: %w", key, err)
	}
	return nil
}

var _ cart.Storage = (*RedisStorage)(nil)
