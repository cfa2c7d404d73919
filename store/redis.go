package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis is a go-redis-backed KV implementation, for deployments that
// share rule state across instances. Keys are namespaced as
// prefix + region + ":" + key.
type Redis struct {
	client *redis.Client
	prefix string
}

// DefaultRedisPrefix namespaces redirector keys in a shared database.
const DefaultRedisPrefix = "redirector:"

// NewRedis creates a redis store with the provided client. An empty
// prefix falls back to DefaultRedisPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Get retrieves a value.
func (r *Redis) Get(ctx context.Context, region, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.makeKey(region, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return data, true, nil
}

// Put stores a value without expiration.
func (r *Redis) Put(ctx context.Context, region, key string, value []byte) error {
	if err := r.client.Set(ctx, r.makeKey(region, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, region, key string) error {
	if err := r.client.Del(ctx, r.makeKey(region, key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Scan visits all keys in the region in ascending key order. Redis SCAN
// has no ordering guarantee, so keys are collected and sorted first.
func (r *Redis) Scan(ctx context.Context, region string, fn func(key string, value []byte) error) error {
	regionPrefix := r.prefix + region + ":"

	var keys []string
	iter := r.client.Scan(ctx, 0, regionPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	sort.Strings(keys)

	for _, k := range keys {
		data, err := r.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis get failed: %w", err)
		}
		if err := fn(strings.TrimPrefix(k, regionPrefix), data); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRegion removes all keys in the region.
func (r *Redis) DeleteRegion(ctx context.Context, region string) error {
	iter := r.client.Scan(ctx, 0, r.prefix+region+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// makeKey builds the namespaced redis key for a region entry.
func (r *Redis) makeKey(region, key string) string {
	return r.prefix + region + ":" + key
}
