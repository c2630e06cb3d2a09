// Package redis wraps the cache behind small interfaces so the service
// layer depends on behavior, not on a concrete client.
package redis

import (
	"context"
	"time"
)

// CacheService is the synchronous cache surface.
type CacheService interface {
	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns the value, or "" with a nil error when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes a key if it exists.
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes every key matching a glob pattern.
	DeleteByPattern(ctx context.Context, pattern string) error

	// AddToSet adds members to a set.
	AddToSet(ctx context.Context, key string, members ...interface{}) error
	// GetSetMembers returns all members of a set.
	GetSetMembers(ctx context.Context, key string) ([]string, error)
	// RemoveFromSet removes members from a set.
	RemoveFromSet(ctx context.Context, key string, members ...interface{}) error
}

// AsyncCacheService adds fire-and-forget task submission on top of the
// synchronous surface. Cache invalidation after a write goes through
// SubmitTask so request latency never waits on Redis.
type AsyncCacheService interface {
	CacheService
	SubmitTask(action func())
}
