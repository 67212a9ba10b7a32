package cache

import (
	"context"
	"testing"

	"github.com/sari-store/storefront/internal/infrastructure/auth"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFactory_Disabled(t *testing.T) {
	f, err := NewFactory(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, f.Client())
	assert.IsType(t, &auth.InMemoryTokenBlacklist{}, f.TokenBlacklist())
	assert.NoError(t, f.Close())
}

func TestNewFactory_UnreachableFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	f, err := NewFactory(context.Background(), cfg, WithLogger(zap.New(core)))
	require.NoError(t, err)
	// untyped nil, so callers comparing against nil see no client
	assert.True(t, f.Client() == nil)
	assert.Equal(t, 1, logs.FilterMessage("Redis unavailable, using in-memory stores").Len())
}

func TestNewFactory_UnreachableWithoutFallback(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	_, err := NewFactory(context.Background(), cfg, WithInMemoryFallback(false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
