package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStoreFactory picks the session backend from configuration
type SessionStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// SessionStoreFactoryOption is a functional option for configuring the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(cfg config.RedisConfig, ttl time.Duration, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore returns the Redis store when Redis is enabled and reachable,
// otherwise the in-memory store if fallback is allowed.
func (f *SessionStoreFactory) CreateStore(ctx context.Context) (shopping.CartStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory session store")
		return NewInMemoryCartStore(f.ttl), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.client = client
		f.logger.Info("using Redis session store", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisCartStore(client, f.ttl), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for sessions but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
		"Sessions will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryCartStore(f.ttl), nil
}

// Client returns the Redis client opened by CreateStore, or nil when the
// in-memory store was chosen.
func (f *SessionStoreFactory) Client() *redis.Client {
	return f.client
}
