package notify

import (
	"context"
	"strings"
	"testing"
)

func TestTruncateURL(t *testing.T) {
	short := "https://example.com/x"
	if got := TruncateURL(short); got != short {
		t.Errorf("TruncateURL(%q) = %q, want unchanged", short, got)
	}

	exact := strings.Repeat("a", 50)
	if got := TruncateURL(exact); got != exact {
		t.Error("URLs at the limit should not be truncated")
	}

	long := strings.Repeat("a", 80)
	got := TruncateURL(long)
	if len(got) != 53 {
		t.Errorf("truncated length = %d, want 50 chars plus ellipsis", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("TruncateURL(%q) = %q, want ellipsis suffix", long, got)
	}
}

// recorder counts delivered notifications.
type recorder struct {
	count int
}

func (r *recorder) Notify(ctx context.Context, title, message string) {
	r.count++
}

func TestThrottledDropsOverLimit(t *testing.T) {
	rec := &recorder{}
	n := NewThrottled(rec, 60, 2)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		n.Notify(ctx, "t", "m")
	}

	// Burst of 2, refill at 1/s: the flood mostly drops.
	if rec.count > 3 {
		t.Errorf("throttled notifier delivered %d notifications, want at most 3", rec.count)
	}
	if rec.count == 0 {
		t.Error("throttled notifier should deliver at least the burst")
	}
}

func TestThrottledDisabled(t *testing.T) {
	rec := &recorder{}
	n := NewThrottled(rec, 0, 0)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		n.Notify(ctx, "t", "m")
	}
	if rec.count != 5 {
		t.Errorf("unthrottled notifier delivered %d, want 5", rec.count)
	}
}
