package ports

import (
	"context"
	"time"
)

// Cache stores serialized query responses.
type Cache interface {
	// Get returns domain.ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry. Mutations use it to drop stale reads.
	Clear(ctx context.Context) error
}
