package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}

// TTLSeconds converts a TTL to the whole seconds Set expects, rounding up so
// a positive TTL never becomes 0 (no expiry)
func TTLSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int((ttl + time.Second - 1) / time.Second)
}

// Cache key prefixes
const (
	CacheKeyRolePrefix      = "role:"
	CacheKeySelectionPrefix = "selection:"
)

// RoleCacheKey returns the cache key of a user's admin flag
func RoleCacheKey(userID string) string {
	return CacheKeyRolePrefix + userID
}

// SelectionCacheKey returns the cache key of a session's draft selection
func SelectionCacheKey(sessionKey string) string {
	return CacheKeySelectionPrefix + sessionKey
}
