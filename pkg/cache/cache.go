package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"TickerPulse/pkg/config"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service defines cache operations. Values round-trip through JSON so every
// backend stores the same representation; *[]byte and *string bypass it.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

// New builds the cache backend selected by configuration.
func New(cfg *config.Config) (Service, error) {
	switch cfg.Cache.Type {
	case "memory", "":
		return NewMemoryCache(), nil
	case "redis":
		return newRedisFromConfig(cfg)
	case "layered":
		rc, err := newRedisFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(rc), nil
	default:
		return nil, fmt.Errorf("cache: unknown type %q", cfg.Cache.Type)
	}
}

func newRedisFromConfig(cfg *config.Config) (*RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("cache: bad redis addr %q: %w", cfg.Cache.Redis.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("cache: bad redis port %q: %w", portStr, err)
	}
	return NewRedisCache(
		WithRedisHost(host),
		WithRedisPort(port),
		WithRedisPassword(cfg.Cache.Redis.Password),
		WithRedisDB(cfg.Cache.Redis.DB),
	)
}

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}
