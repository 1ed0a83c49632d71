package memory

import (
	"context"
	"sync"
	"time"

	"parallel-muhit-webapp/internal/domain/ports/adapter"

	"golang.org/x/time/rate"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a per-key token bucket allowing limit events per window.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	lim, ok := r.limiters[key]
	if !ok {
		lim = rate.NewLimiter(r.every, r.burst)
		r.limiters[key] = lim
	}
	r.mu.Unlock()
	return lim.Allow(), nil
}
