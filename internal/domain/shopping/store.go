package shopping

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartStore persists shopping sessions between requests.
// Get returns ErrSessionNotFound for unknown or evicted sessions.
type CartStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Touch extends the session's time to live
	Touch(ctx context.Context, id uuid.UUID) error
}

// SweepableStore is implemented by stores that hold sessions in process
// memory and need periodic eviction.
type SweepableStore interface {
	CartStore
	Sweep(now time.Time) int
}
