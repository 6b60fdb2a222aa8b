package server

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokerd/internal/game"
)

func newTestLimiter(t *testing.T, limits LimitSettings) (*RateLimiter, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	return NewRateLimiter(limits, mock), mock
}

func requireRateLimited(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	re, ok := game.AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, game.CodeRateLimited, re.Code)
}

func TestRateLimiterSpacing(t *testing.T) {
	rl, mock := newTestLimiter(t, LimitSettings{
		MinActionSpacingMs: 150,
		ActionsPerMinute:   60,
		ThrowSpacingMs:     400,
	})

	require.NoError(t, rl.Allow("p1"))
	requireRateLimited(t, rl.Allow("p1"))

	mock.Advance(150 * time.Millisecond)
	require.NoError(t, rl.Allow("p1"))
}

func TestRateLimiterPerSeat(t *testing.T) {
	rl, _ := newTestLimiter(t, LimitSettings{
		MinActionSpacingMs: 150,
		ActionsPerMinute:   60,
		ThrowSpacingMs:     400,
	})

	require.NoError(t, rl.Allow("p1"))
	require.NoError(t, rl.Allow("p2"))
	requireRateLimited(t, rl.Allow("p1"))
}

func TestRateLimiterMinuteWindow(t *testing.T) {
	rl, mock := newTestLimiter(t, LimitSettings{
		MinActionSpacingMs: 100,
		ActionsPerMinute:   5,
		ThrowSpacingMs:     400,
	})

	// Spaced wide enough for the spacing bucket, fast enough to drain
	// the per-minute budget.
	require.NoError(t, rl.Allow("p1"))
	for i := 0; i < 4; i++ {
		mock.Advance(100 * time.Millisecond)
		require.NoError(t, rl.Allow("p1"))
	}

	mock.Advance(100 * time.Millisecond)
	requireRateLimited(t, rl.Allow("p1"))

	// One slot refills after a fifth of a minute at 5/minute.
	mock.Advance(12 * time.Second)
	require.NoError(t, rl.Allow("p1"))
}

func TestRateLimiterThrowBucket(t *testing.T) {
	rl, mock := newTestLimiter(t, LimitSettings{
		MinActionSpacingMs: 100,
		ActionsPerMinute:   60,
		ThrowSpacingMs:     400,
	})

	require.NoError(t, rl.AllowThrow("p1"))

	// Past the generic spacing but inside the throw window.
	mock.Advance(150 * time.Millisecond)
	requireRateLimited(t, rl.AllowThrow("p1"))

	mock.Advance(300 * time.Millisecond)
	require.NoError(t, rl.AllowThrow("p1"))
}

func TestRateLimiterForgetResets(t *testing.T) {
	rl, _ := newTestLimiter(t, LimitSettings{
		MinActionSpacingMs: 150,
		ActionsPerMinute:   60,
		ThrowSpacingMs:     400,
	})

	require.NoError(t, rl.Allow("p1"))
	requireRateLimited(t, rl.Allow("p1"))

	rl.Forget("p1")
	require.NoError(t, rl.Allow("p1"))
}
