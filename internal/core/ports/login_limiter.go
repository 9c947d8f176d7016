package ports

import "context"

// LoginLimiter throttles login attempts per username before any credential
// check runs. Implementations are fail-open on infrastructure errors: a
// broken limiter must not lock everyone out.
type LoginLimiter interface {
	// Allow records one attempt and reports whether it is within the limit.
	Allow(ctx context.Context, username string) (bool, error)
}
