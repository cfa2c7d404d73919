package tabstate

import "testing"

func TestConsumePendingSwallowsExactlyOnce(t *testing.T) {
	tr := NewTracker()

	if tr.ConsumePending(1) {
		t.Error("unknown tab should be Idle")
	}

	tr.MarkPending(1)
	if tr.Get(1) != PendingSelfNavigation {
		t.Error("MarkPending should transition to PendingSelfNavigation")
	}

	if !tr.ConsumePending(1) {
		t.Error("first event after MarkPending must be swallowed")
	}
	if tr.ConsumePending(1) {
		t.Error("second event must not be swallowed")
	}
	if tr.Get(1) != Idle {
		t.Error("tab should be Idle after the pending event was consumed")
	}
}

func TestTabsAreIndependent(t *testing.T) {
	tr := NewTracker()

	tr.MarkPending(1)
	if tr.ConsumePending(2) {
		t.Error("pending state on tab 1 must not affect tab 2")
	}
	if !tr.ConsumePending(1) {
		t.Error("tab 1 should still be pending")
	}
}

func TestDropForcesIdle(t *testing.T) {
	tr := NewTracker()

	tr.MarkPending(1)
	tr.Drop(1)
	if tr.ConsumePending(1) {
		t.Error("Drop should reset the tab to Idle")
	}
}
