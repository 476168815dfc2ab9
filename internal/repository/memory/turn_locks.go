package memory

import (
	"sync"

	"github.com/google/uuid"
)

// TurnLockRegistry hands out one mutex per chat session so two in-flight
// turns for the same session can never interleave their appends.
// Entries are created lazily and live for the process lifetime; a mutex
// is a few words, so unbounded growth is acceptable at this scale.
type TurnLockRegistry struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewTurnLockRegistry() *TurnLockRegistry {
	return &TurnLockRegistry{}
}

func (r *TurnLockRegistry) lockFor(sessionId uuid.UUID) *sync.Mutex {
	if mu, ok := r.locks.Load(sessionId); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := r.locks.LoadOrStore(sessionId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// TryAcquire attempts the per-session lock without blocking. The caller
// retries once and then surfaces a conflict.
func (r *TurnLockRegistry) TryAcquire(sessionId uuid.UUID) bool {
	return r.lockFor(sessionId).TryLock()
}

func (r *TurnLockRegistry) Release(sessionId uuid.UUID) {
	r.lockFor(sessionId).Unlock()
}
