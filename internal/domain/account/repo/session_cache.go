package repo

import (
	"context"
	"time"
)

// SessionCache is an opaque key/value store with per-key expiry.
// Get returns errors.ErrNotFound when the key is absent or expired.
type SessionCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error
}
