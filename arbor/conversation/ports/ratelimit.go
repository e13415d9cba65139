package convoports

import "context"

// RateLimiter coordinates throughput toward the assistant provider.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
