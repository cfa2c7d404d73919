// Package tabstate tracks per-tab redirect state so the navigation event
// caused by our own redirect is not reprocessed as a new candidate.
package tabstate

import "sync"

// State is the loop-guard state of a single tab.
type State int

const (
	// Idle means the tab has no redirect in flight.
	Idle State = iota
	// PendingSelfNavigation means we just navigated the tab ourselves and
	// its next navigation event must be swallowed.
	PendingSelfNavigation
)

// Tracker is a keyed state store mapping tab IDs to loop-guard state.
// The zero state for an unknown tab is Idle.
type Tracker struct {
	mu      sync.Mutex
	pending map[int]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[int]struct{})}
}

// MarkPending records that the tab was just programmatically navigated:
// Idle -> PendingSelfNavigation.
func (t *Tracker) MarkPending(tabID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[tabID] = struct{}{}
}

// ConsumePending reports whether the tab was pending and resets it to
// Idle. The swallow happens exactly once: a second call for the same tab
// returns false until MarkPending is called again.
func (t *Tracker) ConsumePending(tabID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[tabID]; ok {
		delete(t.pending, tabID)
		return true
	}
	return false
}

// Drop forces the tab back to Idle, used when the tab is closed.
func (t *Tracker) Drop(tabID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, tabID)
}

// Get returns the current state of a tab.
func (t *Tracker) Get(tabID int) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[tabID]; ok {
		return PendingSelfNavigation
	}
	return Idle
}
