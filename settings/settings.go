// Package settings holds the process-wide redirector configuration and
// its persistence.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joeychilson/redirector/rule"
	"github.com/joeychilson/redirector/store"
)

// settingsKey is the single key in the settings region.
const settingsKey = "settings"

// Settings is the process-wide redirector configuration. Rules are in
// match-priority order: the first matching rule wins.
type Settings struct {
	Enabled           bool        `json:"isEnabled"`
	Rules             []rule.Rule `json:"rules"`
	ShowNotifications bool        `json:"showNotifications"`
	LogRedirects      bool        `json:"logRedirects"`
}

// Default returns the settings used before the user has saved anything.
func Default() Settings {
	return Settings{
		Enabled:           true,
		Rules:             []rule.Rule{},
		ShowNotifications: true,
		LogRedirects:      true,
	}
}

// Store persists Settings in the settings region of a KV store.
type Store struct {
	kv store.KV
}

// NewStore creates a settings store over kv.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Get reads the current settings. It always reads from the backend so
// rule edits take effect on the very next navigation; there is no cache.
// A missing record yields Default().
func (s *Store) Get(ctx context.Context) (Settings, error) {
	data, found, err := s.kv.Get(ctx, store.RegionSettings, settingsKey)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if !found {
		return Default(), nil
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if out.Rules == nil {
		out.Rules = []rule.Rule{}
	}
	return out, nil
}

// Update replaces the stored settings.
func (s *Store) Update(ctx context.Context, in Settings) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.kv.Put(ctx, store.RegionSettings, settingsKey, data); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
