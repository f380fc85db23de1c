// Package cache memoises small JSON values, currently the suggestion sets
// produced for a transcript.
package cache

import (
	"context"
	"time"
)

// Cache misses are (false, nil). An error means the backend itself failed
// and callers treat it as a miss.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
}
