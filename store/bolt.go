package store

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Bolt is a bbolt-backed KV implementation with one bucket per region.
// This is the default persistent backend.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return &Bolt{db: db}, nil
}

// NewBolt wraps an already-open bbolt database.
func NewBolt(db *bolt.DB) *Bolt {
	return &Bolt{db: db}
}

// Get retrieves a value.
func (b *Bolt) Get(ctx context.Context, region, key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(region))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			out = make([]byte, len(v))
			copy(out, v)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt get failed: %w", err)
	}
	return out, found, nil
}

// Put stores a value, creating the region bucket if needed.
func (b *Bolt) Put(ctx context.Context, region, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(region))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt put failed: %w", err)
	}
	return nil
}

// Delete removes a key.
func (b *Bolt) Delete(ctx context.Context, region, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(region))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete failed: %w", err)
	}
	return nil
}

// Scan visits all keys in ascending order via a bucket cursor.
func (b *Bolt) Scan(ctx context.Context, region string, fn func(key string, value []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(region))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if err := fn(string(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRegion drops the region bucket.
func (b *Bolt) DeleteRegion(ctx context.Context, region string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(region)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(region))
	})
	if err != nil {
		return fmt.Errorf("bolt delete region failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}
