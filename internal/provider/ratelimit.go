package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces outgoing calls to one provider by a minimum interval.
// Callers are delayed, never rejected, so provider quotas are respected
// without dropping requests.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewRateLimiter creates a limiter enforcing at most one call per interval.
// A non-positive interval disables limiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until the caller may proceed or the context is done. Slots are
// handed out in reservation order under the mutex, so concurrent callers
// queue fairly.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	start := l.next
	if start.Before(now) {
		start = now
	}
	l.next = start.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
