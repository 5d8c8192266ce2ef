package apim_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCacheType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected apim.CacheType
	}{
		{name: "", expected: apim.CacheTypeNone},
		{name: "none", expected: apim.CacheTypeNone},
		{name: "Memory", expected: apim.CacheTypeMemory},
		{name: " nats ", expected: apim.CacheTypeNATS},
		{name: "TIERED", expected: apim.CacheTypeTiered},
	}

	for _, tt := range tests {
		cacheType, err := apim.ParseCacheType(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.expected, cacheType, tt.name)
	}

	_, err := apim.ParseCacheType("redis")
	require.ErrorIs(t, err, apim.ErrUnsupportedCacheType)
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config is a memory cache", func(t *testing.T) {
		t.Parallel()

		cache, err := apim.NewCacheFromConfig(nil)
		require.NoError(t, err)
		assert.IsType(t, &apim.MemoryCache{}, cache)
	})

	t.Run("none disables caching", func(t *testing.T) {
		t.Parallel()

		cache, err := apim.NewCacheFromConfig(&apim.CacheConfig{Type: apim.CacheTypeNone})
		require.NoError(t, err)
		assert.Nil(t, cache)
	})

	t.Run("nats and tiered need a server", func(t *testing.T) {
		t.Parallel()

		_, err := apim.NewCacheFromConfig(&apim.CacheConfig{Type: apim.CacheTypeNATS})
		require.ErrorIs(t, err, apim.ErrNATSConfigRequired)

		_, err = apim.NewCacheFromConfig(&apim.CacheConfig{Type: apim.CacheTypeTiered, NATS: &apim.NATSKVConfig{}})
		require.ErrorIs(t, err, apim.ErrNATSURLRequired)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := apim.NewCacheFromConfig(&apim.CacheConfig{Type: "redis"})
		require.ErrorIs(t, err, apim.ErrUnsupportedCacheType)
	})
}

func TestDefaultCacheConfig(t *testing.T) {
	t.Parallel()

	config := apim.DefaultCacheConfig()
	assert.Equal(t, apim.CacheTypeMemory, config.Type)
	assert.Positive(t, config.MemoryMaxSize)
	assert.Nil(t, config.NATS)
}

func TestTieredCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := apim.NewMemoryCache(10)
	shared := apim.NewMemoryCache(10)
	cache := apim.NewTieredCache(local, shared)

	backends := &apim.CacheEntry{Data: []byte(`{"value":[]}`), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, shared.Set(ctx, "GET /backends", backends))

	got, err := cache.Get(ctx, "GET /backends")
	require.NoError(t, err)
	assert.Equal(t, backends.Data, got.Data)
	assert.True(t, local.Has(ctx, "GET /backends"), "shared hits are copied locally")

	require.NoError(t, cache.Delete(ctx, "GET /backends"))
	assert.False(t, cache.Has(ctx, "GET /backends"))

	_, err = cache.Get(ctx, "GET /backends")
	require.ErrorIs(t, err, apim.ErrResponseNotCached)

	require.NoError(t, cache.Set(ctx, "GET /apis", backends))
	assert.True(t, local.Has(ctx, "GET /apis"))
	assert.True(t, shared.Has(ctx, "GET /apis"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "GET /apis"))

	cache.Close()
}
