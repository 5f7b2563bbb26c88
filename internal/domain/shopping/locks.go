package shopping

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const sessionLockStripes = 64

// SessionLocks serializes read-modify-write cycles on a session within this
// process. Sessions hash onto a fixed set of mutexes, so two sessions may
// share one.
type SessionLocks struct {
	stripes [sessionLockStripes]sync.Mutex
}

// NewSessionLocks creates an unlocked set
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{}
}

// Lock blocks until the session's stripe is free and returns its unlock func
func (l *SessionLocks) Lock(sessionID uuid.UUID) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write(sessionID[:])
	mu := &l.stripes[h.Sum32()%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}
