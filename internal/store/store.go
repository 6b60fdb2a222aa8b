// Package store mirrors authoritative game state into a durable side-store
// for crash recovery, reconnection lookup and audit replay. The mirror is
// a cache, never a lock: callers treat every failure as non-fatal.
package store

import (
	"context"
	"time"

	"jokerd/internal/game"
)

// TTLs for the durable keys. Game state is refreshed on every write;
// player session keys outlive a game so reconnection works across
// restarts.
const (
	GameStateTTL     = 2 * time.Hour
	PlayerSessionTTL = 24 * time.Hour
	AuditTTL         = 24 * time.Hour
)

// AuditEntry is one row of the per-room action log.
type AuditEntry struct {
	At       time.Time      `json:"at"`
	Action   string         `json:"action"`
	PlayerID string         `json:"playerId"`
	Data     map[string]any `json:"data,omitempty"`
}

// Store is the durable side-store boundary. Implementations must be safe
// for concurrent use.
type Store interface {
	// Game state mirror, keyed by room id.
	SaveState(ctx context.Context, roomID string, state *game.State) error
	LoadState(ctx context.Context, roomID string) (*game.State, error)

	// Seat-to-room and seat-to-connection session mappings.
	SetPlayerRoom(ctx context.Context, playerID, roomID string) error
	GetPlayerRoom(ctx context.Context, playerID string) (string, error)
	SetPlayerConn(ctx context.Context, playerID, connID string) error

	// Append-only per-room action log.
	AppendAudit(ctx context.Context, roomID string, entry AuditEntry) error
	AuditLog(ctx context.Context, roomID string) ([]AuditEntry, error)

	// CleanupRoom removes every key the room produced, including the
	// session mappings for the given players.
	CleanupRoom(ctx context.Context, roomID string, playerIDs []string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// ErrNotFound is returned when a key does not exist.
type ErrNotFound struct{ Key string }

func (e *ErrNotFound) Error() string { return "store: not found: " + e.Key }
