// Package history records performed redirects in a bounded, persistent log.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joeychilson/redirector/store"
)

// DefaultCap is the maximum number of retained entries.
const DefaultCap = 1000

// Entry is an immutable record of one performed redirect.
type Entry struct {
	ID            string    `json:"id"`
	OriginalURL   string    `json:"originalUrl"`
	RedirectedURL string    `json:"redirectedUrl"`
	RuleID        string    `json:"ruleId"`
	RuleName      string    `json:"ruleName"`
	TabID         int       `json:"tabId"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store keeps redirect entries in the logs region of a KV store,
// evicting the oldest entries once the cap is exceeded.
type Store struct {
	kv  store.KV
	cap int
}

// NewStore creates a history store over kv. A non-positive cap falls
// back to DefaultCap.
func NewStore(kv store.KV, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Store{kv: kv, cap: capacity}
}

// Add appends an entry, assigning an ID and timestamp if unset, then
// evicts the oldest entries beyond the cap.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}
	if err := s.kv.Put(ctx, store.RegionLogs, makeKey(e.Timestamp, e.ID), data); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return s.evict(ctx)
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.kv.Scan(ctx, store.RegionLogs, func(key string, value []byte) error {
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("failed to decode log entry %s: %w", key, err)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Scan yields insertion order (oldest first); reverse for newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.DeleteRegion(ctx, store.RegionLogs); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	return nil
}

// evict deletes the oldest entries until the store is within its cap.
func (s *Store) evict(ctx context.Context) error {
	var keys []string
	err := s.kv.Scan(ctx, store.RegionLogs, func(key string, value []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for len(keys) > s.cap {
		if err := s.kv.Delete(ctx, store.RegionLogs, keys[0]); err != nil {
			return fmt.Errorf("failed to evict log entry: %w", err)
		}
		keys = keys[1:]
	}
	return nil
}

// makeKey builds a key that sorts by insertion time, with the entry ID
// as a tiebreaker.
func makeKey(ts time.Time, id string) string {
	return fmt.Sprintf("%020d-%s", ts.UnixNano(), id)
}
