package nats

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-subject token buckets for inbound messages.
// The subject set is fixed at subscription time, so the map stays small.
type RateLimiter struct {
	subjects map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter. A non-positive rps disables
// limiting entirely.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		subjects: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a message on the subject may proceed.
func (rl *RateLimiter) Allow(subject string) bool {
	if rl.rps <= 0 {
		return true
	}

	rl.mu.Lock()
	limiter, exists := rl.subjects[subject]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.subjects[subject] = limiter
	}
	rl.mu.Unlock()

	return limiter.Allow()
}
