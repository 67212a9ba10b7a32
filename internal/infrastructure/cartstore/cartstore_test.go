package cartstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behaviour every backend shares
func exerciseStorage(t *testing.T, s cart.Storage, key string) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, key)
	assert.ErrorIs(t, err, cart.ErrNoCart)

	require.NoError(t, s.Save(ctx, key, []byte(`[{"id":"p1","title":"Silk","quantity":2}]`)))
	data, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","title":"Silk","quantity":2}]`, string(data))

	require.NoError(t, s.Save(ctx, key, []byte(`[]`)))
	data, err = s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = s.Load(ctx, key+"-other")
	assert.ErrorIs(t, err, cart.ErrNoCart)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage(), "cart:s1")
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	buf := []byte("[]")
	require.NoError(t, s.Save(ctx, "cart", buf))
	buf[0] = 'x'

	data, err := s.Load(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "carts"))
	require.NoError(t, err)
	exerciseStorage(t, s, "cart:s1")
}

func TestFileStorage_KeysCannotEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "cart:../../etc/passwd", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, dir, filepath.Dir(s.path("cart:../../etc/passwd")))
}

func TestFileStorage_HonoursContext(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, "cart", []byte("[]")), context.Canceled)
	_, err = s.Load(ctx, "cart")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("STORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STORE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	key := "cart:test-" + time.Now().Format("150405.000000000")
	defer client.Del(context.Background(), redisKeyPrefix+key, redisKeyPrefix+key+"-other")

	exerciseStorage(t, NewRedisStorage(client, time.Minute), key)

	ttl, err := client.TTL(context.Background(), redisKeyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNew(t *testing.T) {
	s, err := New(config.CartConfig{Storage: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = New(config.CartConfig{Storage: "file", Directory: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)

	_, err = New(config.CartConfig{Storage: "redis"}, nil)
	assert.Error(t, err)

	s, err = New(config.CartConfig{Storage: "redis"}, redis.NewClient(&redis.Options{Addr: "localhost:0"}))
	require.NoError(t, err)
	assert.IsType(t, &RedisStorage{}, s)

	_, err = New(config.CartConfig{Storage: "sqlite"}, nil)
	assert.Error(t, err)
}

func TestNew_RedisRejectsNilClientPointer(t *testing.T) {
	var client *redis.Client

	s, err := New(config.CartConfig{Storage: "redis"}, client)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "requires a redis client")
}
