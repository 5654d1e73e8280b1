package connector

import (
	"testing"
	"time"

	"replydesk/errors"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_WindowFromFirstOverBudgetCall(t *testing.T) {
	req := require.New(t)

	limiter := newRateLimiter(3)
	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	// Within budget
	for i := 0; i < 3; i++ {
		req.NoError(limiter.Allow())
	}

	// First over-budget call opens the window
	req.ErrorIs(limiter.Allow(), errors.ErrRateLimited)

	// Still short-circuiting inside the window
	current = current.Add(30 * time.Second)
	req.ErrorIs(limiter.Allow(), errors.ErrRateLimited)

	// Window elapsed, budget is fresh again
	current = current.Add(31 * time.Second)
	req.NoError(limiter.Allow())
	req.NoError(limiter.Allow())
}

func TestRateLimiter_Snapshot(t *testing.T) {
	req := require.New(t)

	limiter := newRateLimiter(1)
	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	budget, until := limiter.Snapshot()
	req.Equal(1, budget)
	req.Nil(until)

	req.NoError(limiter.Allow())
	req.ErrorIs(limiter.Allow(), errors.ErrRateLimited)

	_, until = limiter.Snapshot()
	req.NotNil(until)
	req.Equal(current.Add(penaltyWindow), *until)
}
