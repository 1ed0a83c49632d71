package adapter

import "context"

// RateLimiter answers whether one more event for key is allowed now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
