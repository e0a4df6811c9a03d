package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for keyed rate limiting
type Limiter interface {
	// Allow checks if a request for key is allowed under the current limit.
	// On success the request is recorded; check-and-record is atomic per key.
	Allow(key string) bool
	// Reset clears recorded requests for key
	Reset(key string)
	// Sweep drops keys whose entire window has elapsed
	Sweep()
}

// KeyedSlidingWindow tracks request timestamps per key within a trailing
// time window. Entries older than the window are pruned lazily on each
// check.
type KeyedSlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    map[string][]time.Time
	mu          sync.Mutex
	now         func() time.Time
}

// NewKeyedSlidingWindow creates a sliding window limiter allowing
// maxRequests per key within windowSize
func NewKeyedSlidingWindow(maxRequests int, windowSize time.Duration) *KeyedSlidingWindow {
	return &KeyedSlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow checks if a request for key can proceed and records it if so
func (sw *KeyedSlidingWindow) Allow(key string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	valid := sw.pruned(key, now)

	if len(valid) >= sw.maxRequests {
		sw.requests[key] = valid
		return false
	}

	sw.requests[key] = append(valid, now)
	return true
}

// Reset clears all recorded requests for key
func (sw *KeyedSlidingWindow) Reset(key string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	delete(sw.requests, key)
}

// Sweep removes keys with no requests left inside the window, bounding the
// map under identity rotation
func (sw *KeyedSlidingWindow) Sweep() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	for key := range sw.requests {
		if valid := sw.pruned(key, now); len(valid) == 0 {
			delete(sw.requests, key)
		} else {
			sw.requests[key] = valid
		}
	}
}

// pruned returns key's timestamps still inside the window. Caller must hold
// the lock.
func (sw *KeyedSlidingWindow) pruned(key string, now time.Time) []time.Time {
	cutoff := now.Add(-sw.windowSize)
	timestamps := sw.requests[key]

	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}
	return timestamps[i:]
}
