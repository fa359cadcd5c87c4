package ports

import "context"

type RateLimiter interface {
	// Exceeded reports whether key already used up its window without counting a hit.
	Exceeded(ctx context.Context, key string) (bool, error)
	Hit(ctx context.Context, key string) error
	// Allow checks and counts in one step.
	Allow(ctx context.Context, key string) (bool, error)
}
