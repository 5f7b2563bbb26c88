package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCartKeyPrefix namespaces session keys in the shared Redis database
const DefaultCartKeyPrefix = "pimpos:cart:"

// RedisCartStore keeps shopping sessions as JSON documents with a sliding TTL
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a session store on a shared Redis client
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client:    client,
		keyPrefix: DefaultCartKeyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisCartStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

// Get loads a session
func (s *RedisCartStore) Get(ctx context.Context, id uuid.UUID) (*shopping.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shopping.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var cart shopping.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &cart, nil
}

// Save stores a session and resets its TTL
func (s *RedisCartStore) Save(ctx context.Context, cart *shopping.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", cart.ID, err)
	}
	if err := s.client.Set(ctx, s.key(cart.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", cart.ID, err)
	}
	return nil
}

// Delete removes a session; deleting an unknown session is not an error
func (s *RedisCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// Touch extends the session's TTL
func (s *RedisCartStore) Touch(ctx context.Context, id uuid.UUID) error {
	ok, err := s.client.Expire(ctx, s.key(id), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to touch session %s: %w", id, err)
	}
	if !ok {
		return shopping.ErrSessionNotFound
	}
	return nil
}

// Ensure RedisCartStore implements CartStore
var _ shopping.CartStore = (*RedisCartStore)(nil)
