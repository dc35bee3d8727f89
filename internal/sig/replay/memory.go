package replay

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
)

// memoryStore is a process-local NonceStore for single-instance
// deployments and tests. Entries expire by TTL and are reaped lazily on
// insert; nothing deletes them explicitly.
type memoryStore struct {
	clock time2.Clock

	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
}

// NewMemoryStore returns an in-memory NonceStore.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewMemoryStore(clock time2.Clock) NonceStore {
	return &memoryStore{
		clock:   clock,
		entries: make(map[string]time.Time),
	}
}

// InsertIfAbsent is atomic under the store mutex: the existence check and
// the insert happen in one critical section, so concurrent calls for the
// same key resolve to exactly one winner.
func (s *memoryStore) InsertIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, k)
		}
	}

	if expiry, ok := s.entries[key]; ok && expiry.After(now) {
		return false, nil
	}

	s.entries[key] = now.Add(ttl)
	return true, nil
}
