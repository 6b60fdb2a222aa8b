package server

import (
	"sync"

	"github.com/coder/quartz"
	"golang.org/x/time/rate"

	"jokerd/internal/game"
)

// seatLimiter enforces the three per-seat limits: a hard minimum spacing
// between any two actions, a rolling per-minute budget, and a tighter
// spacing for card throws.
type seatLimiter struct {
	spacing *rate.Limiter
	minute  *rate.Limiter
	throw   *rate.Limiter
}

// RateLimiter tracks per-seat limiters. Buckets are fed from the injected
// clock so timer tests can advance them. Entries live for the lifetime of
// the process; seats are few and small.
type RateLimiter struct {
	mu     sync.Mutex
	clock  quartz.Clock
	limits LimitSettings
	seats  map[string]*seatLimiter
}

// NewRateLimiter builds a limiter registry from the configured limits.
func NewRateLimiter(limits LimitSettings, clock quartz.Clock) *RateLimiter {
	return &RateLimiter{
		clock:  clock,
		limits: limits,
		seats:  make(map[string]*seatLimiter),
	}
}

func (rl *RateLimiter) seat(playerID string) *seatLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	sl, ok := rl.seats[playerID]
	if !ok {
		sl = &seatLimiter{
			spacing: rate.NewLimiter(rate.Every(rl.limits.MinActionSpacing()), 1),
			minute:  rate.NewLimiter(rate.Limit(float64(rl.limits.ActionsPerMinute)/60.0), rl.limits.ActionsPerMinute),
			throw:   rate.NewLimiter(rate.Every(rl.limits.ThrowSpacing()), 1),
		}
		rl.seats[playerID] = sl
	}
	return sl
}

// Allow checks a generic action against the spacing and per-minute
// limits. It returns a RATE_LIMITED rule error on violation.
func (rl *RateLimiter) Allow(playerID string) error {
	sl := rl.seat(playerID)
	now := rl.clock.Now()
	if !sl.spacing.AllowN(now, 1) {
		return game.NewRuleError(game.CodeRateLimited, "actions too fast")
	}
	if !sl.minute.AllowN(now, 1) {
		return game.NewRuleError(game.CodeRateLimited, "too many actions this minute")
	}
	return nil
}

// AllowThrow checks a card throw, which carries an additional dedicated
// spacing limit on top of the generic ones.
func (rl *RateLimiter) AllowThrow(playerID string) error {
	if err := rl.Allow(playerID); err != nil {
		return err
	}
	if !rl.seat(playerID).throw.AllowN(rl.clock.Now(), 1) {
		return game.NewRuleError(game.CodeRateLimited, "card throws too fast")
	}
	return nil
}

// Forget drops a seat's limiters, e.g. when its room is torn down.
func (rl *RateLimiter) Forget(playerID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.seats, playerID)
}
