package apim

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/apim-client/internal/constants"
)

// CacheType selects where management API GET responses are kept.
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeNATS   CacheType = "nats"
	// CacheTypeTiered reads a process-local memory cache before NATS KV.
	CacheTypeTiered CacheType = "tiered"
	CacheTypeNone   CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrResponseNotCached    = errors.New("response not cached")
)

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	Type          CacheType
	MemoryMaxSize int
	NATS          *NATSKVConfig
}

// DefaultCacheConfig returns a memory cache of DefaultCacheSize entries.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:          CacheTypeMemory,
		MemoryMaxSize: constants.DefaultCacheSize,
	}
}

// ParseCacheType maps a --cache value to a CacheType. Case is ignored and an
// empty name means no caching.
func ParseCacheType(name string) (CacheType, error) {
	cacheType := CacheType(strings.ToLower(strings.TrimSpace(name)))

	switch cacheType {
	case "":
		return CacheTypeNone, nil
	case CacheTypeMemory, CacheTypeNATS, CacheTypeTiered, CacheTypeNone:
		return cacheType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCacheType, name)
	}
}

// NewCacheFromConfig builds the response cache. CacheTypeNone yields a nil
// Cache, which the transport treats as caching disabled.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	size := config.MemoryMaxSize
	if size <= 0 {
		size = constants.DefaultCacheSize
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCache(size), nil
	case CacheTypeNone:
		return nil, nil
	case CacheTypeNATS, CacheTypeTiered:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		shared, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		if config.Type == CacheTypeNATS {
			return shared, nil
		}

		return NewTieredCache(NewMemoryCache(size), shared), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// TieredCache answers from a local cache first and falls back to a shared
// one, copying shared hits into the local cache. Writes go to both.
type TieredCache struct {
	local  Cache
	shared Cache
}

// NewTieredCache layers local in front of shared.
func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

func (c *TieredCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := c.local.Get(ctx, key)
	if err == nil {
		return entry, nil
	}

	entry, err = c.shared.Get(ctx, key)
	if err != nil {
		return nil, ErrResponseNotCached
	}

	_ = c.local.Set(ctx, key, entry)

	return entry, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return errors.Join(c.local.Set(ctx, key, entry), c.shared.Set(ctx, key, entry))
}

func (c *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.local.Delete(ctx, key), c.shared.Delete(ctx, key))
}

func (c *TieredCache) Clear(ctx context.Context) error {
	return errors.Join(c.local.Clear(ctx), c.shared.Clear(ctx))
}

func (c *TieredCache) Has(ctx context.Context, key string) bool {
	return c.local.Has(ctx, key) || c.shared.Has(ctx, key)
}

// Close releases the shared cache connection, if any.
func (c *TieredCache) Close() {
	if closer, ok := c.shared.(interface{ Close() }); ok {
		closer.Close()
	}
}
