package cache

import (
	"context"
	"time"
)

// Cache is a small JSON blob cache used for read-heavy agenda views.
// Implementations must treat a miss and a backend failure differently:
// Get returns (false, nil) on a miss and (false, err) on failure so
// callers can decide whether to log.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop satisfies Cache without storing anything. Used when no Redis
// address is configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }

func (Noop) Set(ctx context.Context, key string, value any, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }
