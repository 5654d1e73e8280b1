package connector

import (
	"sync"
	"time"

	"replydesk/errors"
)

// penaltyWindow is how long a source stays short-circuited once its
// request budget is blown, measured from the first over-budget call.
const penaltyWindow = 60 * time.Second

// rateLimiter enforces a fixed per-source request budget. Calls within
// the budget pass, the first call over it opens the penalty window, and
// everything short-circuits until the window elapses.
type rateLimiter struct {
	mu           sync.Mutex
	budget       int
	count        int
	limitedUntil time.Time
	now          func() time.Time
}

func newRateLimiter(budget int) *rateLimiter {
	return &rateLimiter{budget: budget, now: time.Now}
}

// Allow consumes one unit of budget or returns ErrRateLimited without
// any side effect on the network.
func (l *rateLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.limitedUntil.IsZero() {
		if now.Before(l.limitedUntil) {
			return errors.ErrRateLimited
		}
		l.limitedUntil = time.Time{}
		l.count = 0
	}

	if l.count < l.budget {
		l.count++
		return nil
	}

	l.limitedUntil = now.Add(penaltyWindow)
	return errors.ErrRateLimited
}

// Snapshot reports the configured budget and, when limited, the instant
// the window resets.
func (l *rateLimiter) Snapshot() (int, *time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limitedUntil.IsZero() || l.now().After(l.limitedUntil) {
		return l.budget, nil
	}
	until := l.limitedUntil
	return l.budget, &until
}
