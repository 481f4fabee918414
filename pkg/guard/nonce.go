package guard

import (
	"context"
	"sync"
	"time"
)

// NonceStore remembers nonces per API key for a bounded time.
type NonceStore interface {
	// Seen reports whether nonce is currently recorded for keyID.
	Seen(ctx context.Context, keyID, nonce string) (bool, error)
	// Record stores nonce for ttl. It returns false when the nonce was
	// already present, so concurrent recorders see exactly one winner.
	Record(ctx context.Context, keyID, nonce string, ttl time.Duration) (bool, error)
}

// Sweeper is implemented by stores that need explicit expiry.
type Sweeper interface {
	Sweep(now time.Time) int
}

// MemoryNonceStore is a process-local NonceStore.
type MemoryNonceStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]map[string]time.Time // keyID -> nonce -> expiresAt
}

func NewMemoryNonceStore(now func() time.Time) *MemoryNonceStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryNonceStore{now: now, entries: make(map[string]map[string]time.Time)}
}

func (s *MemoryNonceStore) Seen(_ context.Context, keyID, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(keyID, nonce, s.now()), nil
}

func (s *MemoryNonceStore) Record(_ context.Context, keyID, nonce string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.liveLocked(keyID, nonce, now) {
		return false, nil
	}

	m, ok := s.entries[keyID]
	if !ok {
		m = make(map[string]time.Time)
		s.entries[keyID] = m
	}
	m[nonce] = now.Add(ttl)
	return true, nil
}

// Sweep drops expired nonces and empty per-key maps.
func (s *MemoryNonceStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for keyID, m := range s.entries {
		for nonce, exp := range m {
			if now.After(exp) {
				delete(m, nonce)
				removed++
			}
		}
		if len(m) == 0 {
			delete(s.entries, keyID)
		}
	}
	return removed
}

// Len returns the number of recorded nonces, expired or not.
func (s *MemoryNonceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.entries {
		n += len(m)
	}
	return n
}

func (s *MemoryNonceStore) liveLocked(keyID, nonce string, now time.Time) bool {
	exp, ok := s.entries[keyID][nonce]
	return ok && !now.After(exp)
}
