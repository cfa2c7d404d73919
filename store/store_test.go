package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// backends returns every KV implementation under test.
func backends(t *testing.T) map[string]KV {
	t.Helper()

	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rds := NewRedis(client, "test:")
	t.Cleanup(func() { rds.Close() })

	return map[string]KV{
		"memory": NewMemory(),
		"bolt":   bolt,
		"redis":  rds,
	}
}

func TestKVGetPutDelete(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, found, err := kv.Get(ctx, RegionSettings, "missing"); err != nil || found {
				t.Fatalf("Get(missing) = found=%v err=%v, want absent", found, err)
			}

			if err := kv.Put(ctx, RegionSettings, "k", []byte("v1")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, found, err := kv.Get(ctx, RegionSettings, "k")
			if err != nil || !found {
				t.Fatalf("Get() = found=%v err=%v", found, err)
			}
			if string(got) != "v1" {
				t.Errorf("Get() = %q, want %q", got, "v1")
			}

			if err := kv.Put(ctx, RegionSettings, "k", []byte("v2")); err != nil {
				t.Fatalf("Put(overwrite) error = %v", err)
			}
			got, _, _ = kv.Get(ctx, RegionSettings, "k")
			if string(got) != "v2" {
				t.Errorf("Get() after overwrite = %q, want %q", got, "v2")
			}

			if err := kv.Delete(ctx, RegionSettings, "k"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, found, _ := kv.Get(ctx, RegionSettings, "k"); found {
				t.Error("Get() after Delete() should not find the key")
			}

			// Deleting a missing key is not an error.
			if err := kv.Delete(ctx, RegionSettings, "k"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
		})
	}
}

func TestKVScanOrder(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Insert out of key order; Scan must return ascending.
			for _, k := range []string{"003", "001", "002"} {
				if err := kv.Put(ctx, RegionLogs, k, []byte("v"+k)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			var keys []string
			err := kv.Scan(ctx, RegionLogs, func(key string, value []byte) error {
				keys = append(keys, key)
				return nil
			})
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}

			want := []string{"001", "002", "003"}
			if len(keys) != len(want) {
				t.Fatalf("Scan() visited %d keys, want %d", len(keys), len(want))
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Errorf("Scan() key[%d] = %q, want %q", i, keys[i], want[i])
				}
			}
		})
	}
}

func TestKVScanStopsOnError(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := kv.Put(ctx, RegionLogs, fmt.Sprintf("%03d", i), []byte("v")); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			visited := 0
			wantErr := fmt.Errorf("stop")
			err := kv.Scan(ctx, RegionLogs, func(key string, value []byte) error {
				visited++
				if visited == 2 {
					return wantErr
				}
				return nil
			})
			if err == nil {
				t.Fatal("Scan() should propagate the callback error")
			}
			if visited != 2 {
				t.Errorf("Scan() visited %d keys after error, want 2", visited)
			}
		})
	}
}

func TestKVRegionsAreIsolated(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Put(ctx, RegionSettings, "k", []byte("settings")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := kv.Put(ctx, RegionLogs, "k", []byte("logs")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, _, _ := kv.Get(ctx, RegionSettings, "k")
			if string(got) != "settings" {
				t.Errorf("settings region = %q, want %q", got, "settings")
			}

			if err := kv.DeleteRegion(ctx, RegionLogs); err != nil {
				t.Fatalf("DeleteRegion() error = %v", err)
			}
			if _, found, _ := kv.Get(ctx, RegionLogs, "k"); found {
				t.Error("logs region should be empty after DeleteRegion")
			}
			if _, found, _ := kv.Get(ctx, RegionSettings, "k"); !found {
				t.Error("DeleteRegion(logs) must not touch the settings region")
			}
		})
	}
}
