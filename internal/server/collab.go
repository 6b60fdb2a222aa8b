package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"jokerd/internal/game"
	"jokerd/internal/store"
)

// PlayerIdentity is a resolved seat identity.
type PlayerIdentity struct {
	ID   string
	Name string
}

// Authenticator resolves an auth token into a player identity. The dev
// implementation accepts any non-empty token; production deployments plug
// in a real one.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (PlayerIdentity, error)
}

// Persistence receives the final state and audit log of a finished game.
type Persistence interface {
	RecordGame(ctx context.Context, state *game.State, audit []store.AuditEntry) error
}

// Ledger settles player balances after a finished game.
type Ledger interface {
	Settle(ctx context.Context, roomID string, rankings []game.FinalRanking) error
}

// DevAuthenticator treats the token itself as the player id. A token of
// the form "id:name" splits into both parts.
type DevAuthenticator struct{}

func (DevAuthenticator) Authenticate(_ context.Context, token string) (PlayerIdentity, error) {
	if token == "" {
		return PlayerIdentity{}, fmt.Errorf("empty token")
	}
	id, name, ok := strings.Cut(token, ":")
	if !ok || name == "" {
		name = id
	}
	return PlayerIdentity{ID: id, Name: name}, nil
}

// LogPersistence logs finished games instead of persisting them.
type LogPersistence struct {
	Logger *log.Logger
}

func (p LogPersistence) RecordGame(_ context.Context, state *game.State, audit []store.AuditEntry) error {
	p.Logger.Info("game recorded",
		"roomId", state.ID,
		"winnerId", state.WinnerID,
		"rounds", len(state.History),
		"auditEntries", len(audit))
	return nil
}

// LogLedger logs final standings instead of settling balances.
type LogLedger struct {
	Logger *log.Logger
}

func (l LogLedger) Settle(_ context.Context, roomID string, rankings []game.FinalRanking) error {
	for _, r := range rankings {
		l.Logger.Info("final standing", "roomId", roomID, "playerId", r.PlayerID, "score", r.Score)
	}
	return nil
}
