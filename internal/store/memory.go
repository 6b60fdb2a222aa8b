package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/quartz"

	"jokerd/internal/game"
)

// MemoryStore is the fallback mirror used when Redis is not configured or
// unreachable. TTLs are honored lazily on read against the injected clock
// so tests can advance time. States are kept serialized, like the Redis
// mirror, so a stored snapshot never aliases live game state.
type MemoryStore struct {
	mu    sync.RWMutex
	clock quartz.Clock

	states      map[string]memEntry[[]byte]
	playerRooms map[string]memEntry[string]
	playerConns map[string]memEntry[string]
	audits      map[string][]AuditEntry
	roomPlayers map[string]map[string]struct{}
}

type memEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e memEntry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	return &MemoryStore{
		clock:       clock,
		states:      make(map[string]memEntry[[]byte]),
		playerRooms: make(map[string]memEntry[string]),
		playerConns: make(map[string]memEntry[string]),
		audits:      make(map[string][]AuditEntry),
		roomPlayers: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) SaveState(_ context.Context, roomID string, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[roomID] = memEntry[[]byte]{value: payload, expiresAt: s.clock.Now().Add(GameStateTTL)}
	members, ok := s.roomPlayers[roomID]
	if !ok {
		members = make(map[string]struct{}, len(state.Players))
		s.roomPlayers[roomID] = members
	}
	for _, p := range state.Players {
		members[p.ID] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) LoadState(_ context.Context, roomID string) (*game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.states[roomID]
	if !ok || entry.expired(s.clock.Now()) {
		return nil, &ErrNotFound{Key: keyGame + roomID}
	}
	var state game.State
	if err := json.Unmarshal(entry.value, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryStore) SetPlayerRoom(_ context.Context, playerID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerRooms[playerID] = memEntry[string]{value: roomID, expiresAt: s.clock.Now().Add(PlayerSessionTTL)}
	return nil
}

func (s *MemoryStore) GetPlayerRoom(_ context.Context, playerID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.playerRooms[playerID]
	if !ok || entry.expired(s.clock.Now()) {
		return "", &ErrNotFound{Key: keyPlayerRoom + playerID}
	}
	return entry.value, nil
}

func (s *MemoryStore) SetPlayerConn(_ context.Context, playerID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerConns[playerID] = memEntry[string]{value: connID, expiresAt: s.clock.Now().Add(PlayerSessionTTL)}
	return nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, roomID string, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits[roomID] = append(s.audits[roomID], entry)
	return nil
}

func (s *MemoryStore) AuditLog(_ context.Context, roomID string) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]AuditEntry, len(s.audits[roomID]))
	copy(entries, s.audits[roomID])
	return entries, nil
}

func (s *MemoryStore) CleanupRoom(_ context.Context, roomID string, playerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, roomID)
	delete(s.audits, roomID)
	delete(s.roomPlayers, roomID)
	for _, id := range playerIDs {
		delete(s.playerRooms, id)
		delete(s.playerConns, id)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
