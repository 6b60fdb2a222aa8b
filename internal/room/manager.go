// Package room owns the concurrency shell around game states: the
// matchmaking queue, room registry, seat-to-connection mapping, the
// dual-write commit to the durable mirror and bot substitution. One room
// is owned by one process; the mirror is recovery, not a lock.
package room

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"jokerd/internal/bot"
	"jokerd/internal/game"
	"jokerd/internal/store"
)

// QueuedPlayer is a waiting seat, ordered by arrival.
type QueuedPlayer struct {
	ID       string
	Name     string
	ConnID   string
	JoinedAt time.Time
}

// Room binds an authoritative game state to its live connections and
// timers. All access goes through the mutex; the orchestrator holds it
// for the full fetch-validate-transition-commit-broadcast cycle.
type Room struct {
	ID     string
	Mu     sync.Mutex
	State  game.State
	Conns  map[string]string // playerID -> connID
	Timers *TimerSet
}

// Manager is the room/session registry.
type Manager struct {
	mu       sync.Mutex
	logger   *log.Logger
	clock    quartz.Clock
	store    store.Store
	rooms    map[string]*Room
	byPlayer map[string]string
	queue    []QueuedPlayer
}

// NewManager builds an empty manager over the given mirror store.
func NewManager(st store.Store, logger *log.Logger, clock quartz.Clock) *Manager {
	return &Manager{
		logger:   logger.WithPrefix("room"),
		clock:    clock,
		store:    st,
		rooms:    make(map[string]*Room),
		byPlayer: make(map[string]string),
	}
}

// Enqueue adds a player to the FIFO matchmaking queue and returns the
// queue length. A player already queued keeps their original position.
func (m *Manager) Enqueue(p QueuedPlayer) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range m.queue {
		if q.ID == p.ID {
			return len(m.queue)
		}
	}
	p.JoinedAt = m.clock.Now()
	m.queue = append(m.queue, p)
	m.logger.Info("player queued", "playerId", p.ID, "queued", len(m.queue))
	return len(m.queue)
}

// Dequeue removes a player from the queue.
func (m *Manager) Dequeue(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, q := range m.queue {
		if q.ID == playerID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// QueueSize returns the number of waiting players.
func (m *Manager) QueueSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// TakeSeats pops up to n players from the front of the queue.
func (m *Manager) TakeSeats(n int) []QueuedPlayer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.queue) {
		n = len(m.queue)
	}
	taken := make([]QueuedPlayer, n)
	copy(taken, m.queue[:n])
	m.queue = append([]QueuedPlayer(nil), m.queue[n:]...)
	return taken
}

// Add registers a freshly created room, maps its human seats and mirrors
// the initial state.
func (m *Manager) Add(ctx context.Context, state game.State, conns map[string]string) *Room {
	r := &Room{
		ID:     state.ID,
		State:  state,
		Conns:  conns,
		Timers: NewTimerSet(m.clock),
	}

	m.mu.Lock()
	m.rooms[r.ID] = r
	for _, p := range state.Players {
		if !p.IsBot {
			m.byPlayer[p.ID] = r.ID
		}
	}
	m.mu.Unlock()

	for playerID, connID := range conns {
		if err := m.store.SetPlayerRoom(ctx, playerID, r.ID); err != nil {
			m.logger.Warn("player room mapping not mirrored", "playerId", playerID, "err", err)
		}
		if err := m.store.SetPlayerConn(ctx, playerID, connID); err != nil {
			m.logger.Warn("player conn mapping not mirrored", "playerId", playerID, "err", err)
		}
	}
	m.Commit(ctx, r)
	m.logger.Info("room created", "roomId", r.ID, "players", len(state.Players))
	return r
}

// Room returns a room by id.
func (m *Manager) Room(roomID string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// RoomByPlayer resolves the room a player belongs to, falling back to
// the durable mapping after a process restart.
func (m *Manager) RoomByPlayer(ctx context.Context, playerID string) (*Room, bool) {
	m.mu.Lock()
	roomID, ok := m.byPlayer[playerID]
	m.mu.Unlock()
	if ok {
		return m.Room(roomID)
	}

	roomID, err := m.store.GetPlayerRoom(ctx, playerID)
	if err != nil {
		return nil, false
	}
	return m.Room(roomID)
}

// Commit mirrors the room's committed state asynchronously. The in-memory
// copy is already authoritative by the time this is called; a mirror
// failure is logged and ignored. The snapshot is deep-copied under the
// caller's room lock so later seat mutations cannot race the write.
func (m *Manager) Commit(ctx context.Context, r *Room) {
	snapshot := r.State.Clone()
	go func() {
		if err := m.store.SaveState(ctx, r.ID, &snapshot); err != nil {
			m.logger.Warn("state not mirrored", "roomId", r.ID, "err", err)
		}
	}()
}

// UpdateConn re-maps a seat to a new connection, e.g. on reconnect.
func (m *Manager) UpdateConn(ctx context.Context, r *Room, playerID, connID string) {
	r.Conns[playerID] = connID
	if err := m.store.SetPlayerConn(ctx, playerID, connID); err != nil {
		m.logger.Warn("player conn mapping not mirrored", "playerId", playerID, "err", err)
	}
}

// DropConn removes a seat's connection mapping without touching the
// player's membership; the seat can still reconnect or be replaced by a
// bot later.
func (m *Manager) DropConn(r *Room, playerID string) {
	delete(r.Conns, playerID)
}

// ReplaceWithBot swaps a seat's identity for a fresh bot while keeping
// hand, bets and scores. Must be called with the room lock held. The
// replaced seat index is returned, or -1 if the player is not seated.
func (m *Manager) ReplaceWithBot(r *Room, playerID string, identity bot.Identity) int {
	idx := r.State.PlayerIndex(playerID)
	if idx < 0 {
		return -1
	}

	p := &r.State.Players[idx]
	p.ID = identity.ID
	p.Name = identity.Name
	p.IsBot = true
	p.Connected = false
	delete(r.Conns, playerID)

	m.mu.Lock()
	delete(m.byPlayer, playerID)
	m.mu.Unlock()

	m.logger.Info("seat replaced by bot", "roomId", r.ID, "playerId", playerID, "botId", identity.ID)
	return idx
}

// Remove tears the room down: stops its timers, drops the registry
// entries and clears every durable key it produced.
func (m *Manager) Remove(ctx context.Context, roomID string) {
	m.mu.Lock()
	r, ok := m.rooms[roomID]
	if ok {
		delete(m.rooms, roomID)
		for playerID, mapped := range m.byPlayer {
			if mapped == roomID {
				delete(m.byPlayer, playerID)
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	r.Timers.StopAll()

	playerIDs := make([]string, 0, len(r.State.Players))
	for _, p := range r.State.Players {
		playerIDs = append(playerIDs, p.ID)
	}
	if err := m.store.CleanupRoom(ctx, roomID, playerIDs); err != nil {
		m.logger.Warn("room keys not cleaned", "roomId", roomID, "err", err)
	}
	m.logger.Info("room removed", "roomId", roomID)
}

// Rooms returns a snapshot of the live rooms, for shutdown sweeps.
func (m *Manager) Rooms() []*Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}
