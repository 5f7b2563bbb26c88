package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
)

type cartEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCartStore keeps sessions in process memory.
// Carts are stored serialized so callers never share mutable state.
// Expired sessions are removed by Sweep, which the scheduler runs.
type InMemoryCartStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cartEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCartStore creates an empty in-memory session store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{
		entries: make(map[uuid.UUID]cartEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get loads a session that has not expired
func (s *InMemoryCartStore) Get(_ context.Context, id uuid.UUID) (*shopping.Cart, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return nil, shopping.ErrSessionNotFound
	}

	var cart shopping.Cart
	if err := json.Unmarshal(e.data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save stores a session and resets its TTL
func (s *InMemoryCartStore) Save(_ context.Context, cart *shopping.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cart.ID] = cartEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete removes a session
func (s *InMemoryCartStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Touch extends a live session's TTL
func (s *InMemoryCartStore) Touch(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[id]
	if !ok || !now.Before(e.expiresAt) {
		return shopping.ErrSessionNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	s.entries[id] = e
	return nil
}

// Sweep evicts sessions that expired at or before now
func (s *InMemoryCartStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (s *InMemoryCartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryCartStore implements SweepableStore
var _ shopping.SweepableStore = (*InMemoryCartStore)(nil)
