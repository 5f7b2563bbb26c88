package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore revokes operator tokens before they expire. Single tokens
// are revoked on logout; a user-wide cutoff is set on password change and
// rejects every token that user was issued before it.
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error
	UserTokensRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// DefaultRevocationPrefix namespaces revocation keys in the shared Redis database
const DefaultRevocationPrefix = "pimpos:auth:revoked:"

// issuedBefore compares at second precision since iat carries no fraction.
// A token issued in the same second as the cutoff stays valid.
func issuedBefore(issuedAt, cutoff time.Time) bool {
	return issuedAt.Unix() < cutoff.Unix()
}

// RedisRevocationStore keeps revocations in Redis with the token's remaining lifetime as TTL
type RedisRevocationStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocationStore creates a store on the shared Redis client
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, prefix: DefaultRevocationPrefix, now: time.Now}
}

func (s *RedisRevocationStore) key(kind, id string) string {
	return s.prefix + kind + ":" + id
}

// RevokeToken marks a JTI as revoked for ttl
func (s *RedisRevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key("jti", jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a JTI was revoked
func (s *RedisRevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key("jti", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// RevokeUserTokens stores the current unix time as the user's cutoff
func (s *RedisRevocationStore) RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key("user", userID), s.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// UserTokensRevoked reports whether issuedAt predates the user's cutoff
func (s *RedisRevocationStore) UserTokensRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := s.client.Get(ctx, s.key("user", userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check user cutoff: %w", err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse user cutoff %q: %w", raw, err)
	}
	return issuedBefore(issuedAt, time.Unix(unix, 0)), nil
}

// MemoryRevocationStore is used when Redis is disabled. Revocations are lost
// on restart and are not shared between instances.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // jti -> expiry
	cutoffs map[string]time.Time // user id -> cutoff
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		tokens:  make(map[string]time.Time),
		cutoffs: make(map[string]time.Time),
		now:     time.Now,
	}
}

// RevokeToken marks a JTI as revoked for ttl
func (s *MemoryRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[jti] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

// IsTokenRevoked reports whether a JTI was revoked and the revocation is still live
func (s *MemoryRevocationStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		delete(s.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUserTokens sets the user's cutoff to now. The ttl is ignored because
// a cutoff older than the longest token lifetime rejects nothing.
func (s *MemoryRevocationStore) RevokeUserTokens(_ context.Context, userID string, _ time.Duration) error {
	s.mu.Lock()
	s.cutoffs[userID] = s.now()
	s.mu.Unlock()
	return nil
}

// UserTokensRevoked reports whether issuedAt predates the user's cutoff
func (s *MemoryRevocationStore) UserTokensRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	cutoff, ok := s.cutoffs[userID]
	s.mu.Unlock()
	return ok && issuedBefore(issuedAt, cutoff), nil
}

// Sweep drops expired token revocations and returns how many were removed
func (s *MemoryRevocationStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jti, expiresAt := range s.tokens {
		if now.After(expiresAt) {
			delete(s.tokens, jti)
			removed++
		}
	}
	return removed
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*MemoryRevocationStore)(nil)
)
