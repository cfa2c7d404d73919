// Package store provides key-value persistence with named regions, so the
// engine is independent of the concrete storage backend.
package store

import "context"

// Regions used by the redirector.
const (
	RegionSettings = "settings"
	RegionLogs     = "logs"
)

// KV is a key-value store partitioned into named regions. Scan visits
// keys in ascending lexicographic order, which the history store relies
// on for insertion-ordered eviction.
type KV interface {
	// Get returns the value for key in region. The second return is
	// false when the key does not exist.
	Get(ctx context.Context, region, key string) ([]byte, bool, error)
	// Put stores value under key in region, creating the region if needed.
	Put(ctx context.Context, region, key string, value []byte) error
	// Delete removes key from region. Deleting a missing key is not an error.
	Delete(ctx context.Context, region, key string) error
	// Scan calls fn for each key in region in ascending key order.
	// Returning an error from fn stops the scan and propagates the error.
	Scan(ctx context.Context, region string, fn func(key string, value []byte) error) error
	// DeleteRegion removes all keys in region.
	DeleteRegion(ctx context.Context, region string) error
	// Close releases resources held by the store.
	Close() error
}
