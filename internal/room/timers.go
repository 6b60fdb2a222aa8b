package room

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Timer slot names. Each room carries at most one live timer per slot;
// reconnect timers are keyed per seat via ReconnectSlot.
const (
	SlotTurn        = "turn"
	SlotTrickReveal = "trickReveal"
	SlotPulkaRecap  = "pulkaRecap"
	SlotBotFill     = "botFill"
	SlotTeardown    = "teardown"
)

// ReconnectSlot names the per-seat reconnect grace timer.
func ReconnectSlot(playerID string) string {
	return "reconnect:" + playerID
}

// TimerSet is a registry of named timers for one room. Arming a slot
// always stops the previous timer in that slot first, so a slot never
// fires twice for one arming.
type TimerSet struct {
	mu     sync.Mutex
	clock  quartz.Clock
	timers map[string]*quartz.Timer
}

// NewTimerSet builds an empty registry on the given clock.
func NewTimerSet(clock quartz.Clock) *TimerSet {
	return &TimerSet{clock: clock, timers: make(map[string]*quartz.Timer)}
}

// Arm schedules fn on the slot after d, replacing any pending timer in
// the same slot.
func (ts *TimerSet) Arm(slot string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if timer, ok := ts.timers[slot]; ok {
		timer.Stop()
	}
	ts.timers[slot] = ts.clock.AfterFunc(d, func() {
		ts.mu.Lock()
		delete(ts.timers, slot)
		ts.mu.Unlock()
		fn()
	})
}

// Stop cancels the slot's pending timer, if any.
func (ts *TimerSet) Stop(slot string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if timer, ok := ts.timers[slot]; ok {
		timer.Stop()
		delete(ts.timers, slot)
	}
}

// StopAll cancels every pending timer. Used at teardown.
func (ts *TimerSet) StopAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for slot, timer := range ts.timers {
		timer.Stop()
		delete(ts.timers, slot)
	}
}

// Armed reports whether the slot currently has a pending timer.
func (ts *TimerSet) Armed(slot string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	_, ok := ts.timers[slot]
	return ok
}
