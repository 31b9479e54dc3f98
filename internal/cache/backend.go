// Package cache provides the small read-through cache used for data the
// upstream API serves identically to everyone: the board list and the
// denormalized identity snapshots shown on post cards. Post and comment
// lists are never cached; staleness there is handled by refetch semantics,
// not TTLs.
package cache

import (
	"context"
	"time"
)

// Backend is a byte-value cache with per-entry TTLs.
type Backend interface {
	// Get retrieves a value. Returns (value, found, error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
