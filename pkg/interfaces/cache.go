package interfaces

import (
	"context"
	"time"
)

// CacheProvider backs the attachment URL lookups and, when enabled, the
// rendered credit figures. Get reports a miss with a non-nil error.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	// Set stores value for ttl; zero uses the provider's default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
