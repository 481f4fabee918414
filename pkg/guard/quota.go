package guard

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	rpm      int
	lastSeen time.Time
}

// Quota enforces a requests-per-minute budget per API key.
type Quota struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewQuota() *Quota {
	return &Quota{buckets: make(map[string]*bucket)}
}

// Allow consumes one request from keyID's bucket. A non-positive rpm
// disables the quota for that key.
func (q *Quota) Allow(keyID string, rpm int, now time.Time) bool {
	if rpm <= 0 {
		return true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.buckets[keyID]
	if !ok || b.rpm != rpm {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), rpm),
			rpm:     rpm,
		}
		q.buckets[keyID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Sweep removes buckets idle for longer than idle.
func (q *Quota) Sweep(now time.Time, idle time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for id, b := range q.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(q.buckets, id)
			removed++
		}
	}
	return removed
}

// Forget drops keyID's bucket, e.g. after the key is rotated.
func (q *Quota) Forget(keyID string) {
	q.mu.Lock()
	delete(q.buckets, keyID)
	q.mu.Unlock()
}
