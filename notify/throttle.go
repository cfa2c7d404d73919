package notify

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a Notifier with a token-bucket rate limit so a rule
// matching a burst of navigations cannot spam the user. Notifications
// over the limit are dropped, not queued.
type Throttled struct {
	next    Notifier
	limiter *rate.Limiter
}

// NewThrottled creates a throttled notifier allowing perMinute
// notifications per minute with a burst of burst. Non-positive values
// disable throttling.
func NewThrottled(next Notifier, perMinute float64, burst int) *Throttled {
	var limiter *rate.Limiter
	if perMinute > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
	}
	return &Throttled{next: next, limiter: limiter}
}

// Notify forwards the notification unless the rate limit is exceeded.
func (t *Throttled) Notify(ctx context.Context, title, message string) {
	if t.limiter != nil && !t.limiter.Allow() {
		return
	}
	t.next.Notify(ctx, title, message)
}
