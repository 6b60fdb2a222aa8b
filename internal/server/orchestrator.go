package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"jokerd/internal/bot"
	"jokerd/internal/game"
	"jokerd/internal/room"
	"jokerd/internal/store"
)

// Delay before a bot seat acts, so bot turns are readable at the table.
const botActDelay = 900 * time.Millisecond

// Sender delivers an outbound message to a connection. The WebSocket
// server implements it; tests substitute a recorder.
type Sender interface {
	Send(connID string, msg *Message)
}

// Orchestrator owns the side-effect shell around the engine: matchmaking,
// timers, bot turns, substitution, persistence handoff and broadcasts.
// Every state transition runs under the owning room's lock in the
// fetch-validate-transition-commit-broadcast cycle.
type Orchestrator struct {
	logger  *log.Logger
	clock   quartz.Clock
	cfg     *Config
	engine  *game.Engine
	bots    *bot.Strategy
	manager *room.Manager
	store   store.Store
	limiter *RateLimiter
	sender  Sender

	// Collaborator boundaries, dev implementations by default.
	Auth    Authenticator
	Persist Persistence
	Ledger  Ledger

	mu         sync.Mutex
	fillTimer  *quartz.Timer
	botOrdinal int
}

// NewOrchestrator wires the orchestrator over its collaborators.
func NewOrchestrator(
	cfg *Config,
	engine *game.Engine,
	bots *bot.Strategy,
	manager *room.Manager,
	st store.Store,
	sender Sender,
	clock quartz.Clock,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		logger:  logger.WithPrefix("orchestrator"),
		clock:   clock,
		cfg:     cfg,
		engine:  engine,
		bots:    bots,
		manager: manager,
		store:   st,
		limiter: NewRateLimiter(cfg.Limits, clock),
		sender:  sender,
		Auth:    DevAuthenticator{},
		Persist: LogPersistence{Logger: logger},
		Ledger:  LogLedger{Logger: logger},
	}
}

// Authenticate resolves a token through the configured authenticator.
func (o *Orchestrator) Authenticate(ctx context.Context, token string) (PlayerIdentity, error) {
	return o.Auth.Authenticate(ctx, token)
}

// HandleFindGame queues a player for matchmaking, or reconnects them to
// the game they are already part of.
func (o *Orchestrator) HandleFindGame(ctx context.Context, player PlayerIdentity, connID string) error {
	if err := o.limiter.Allow(player.ID); err != nil {
		return err
	}
	if r, ok := o.manager.RoomByPlayer(ctx, player.ID); ok && !r.State.Finished() {
		if o.reconnect(ctx, r, player.ID, connID) {
			return nil
		}
	} else if r, ok := o.restoreRoom(ctx, player.ID); ok {
		if o.reconnect(ctx, r, player.ID, connID) {
			return nil
		}
	}

	queued := o.manager.Enqueue(room.QueuedPlayer{ID: player.ID, Name: player.Name, ConnID: connID})
	if queued >= game.Seats {
		o.stopFillTimer()
		o.startRoom(ctx)
		return nil
	}

	o.send(connID, MessageTypeWaitingForPlayers, WaitingForPlayersData{
		Queued: queued,
		Needed: game.Seats - queued,
	})
	o.armFillTimer()
	return nil
}

// HandleLeaveQueue removes a waiting player from matchmaking.
func (o *Orchestrator) HandleLeaveQueue(_ context.Context, playerID string) error {
	if err := o.limiter.Allow(playerID); err != nil {
		return err
	}
	if !o.manager.Dequeue(playerID) {
		return fmt.Errorf("not in queue")
	}
	return nil
}

// HandleLeaveGame is a deliberate exit: the seat is handed to a bot
// immediately instead of waiting out the reconnect grace.
func (o *Orchestrator) HandleLeaveGame(ctx context.Context, playerID string) error {
	if err := o.limiter.Allow(playerID); err != nil {
		return err
	}
	if o.manager.Dequeue(playerID) {
		return nil
	}
	r, ok := o.manager.RoomByPlayer(ctx, playerID)
	if !ok {
		return fmt.Errorf("not in a game")
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	o.broadcast(r, MessageTypePlayerLeft, PlayerLeftData{PlayerID: playerID})
	o.audit(r.ID, "player_left", playerID, nil)
	o.replaceSeat(ctx, r, playerID)
	return nil
}

// HandleSelectTrump applies the chooser's trump decision.
func (o *Orchestrator) HandleSelectTrump(ctx context.Context, playerID string, data SelectTrumpData) error {
	decision := game.TrumpDecision{Kind: game.TrumpDecisionKind(data.Decision), Suit: data.Suit}
	return o.act(ctx, playerID, "select_trump", false,
		map[string]any{"decision": data.Decision, "suit": string(data.Suit)},
		func(s game.State) (game.State, error) {
			return o.engine.SelectTrump(s, playerID, decision)
		})
}

// HandleMakeBet applies a bet for the acting seat.
func (o *Orchestrator) HandleMakeBet(ctx context.Context, playerID string, data MakeBetData) error {
	return o.act(ctx, playerID, "make_bet", false,
		map[string]any{"amount": data.Amount},
		func(s game.State) (game.State, error) {
			return o.engine.MakeBet(s, playerID, data.Amount)
		})
}

// HandleThrowCard applies a card play for the acting seat.
func (o *Orchestrator) HandleThrowCard(ctx context.Context, playerID string, data ThrowCardData) error {
	return o.act(ctx, playerID, "throw_card", true,
		map[string]any{"cardId": data.CardID},
		func(s game.State) (game.State, error) {
			return o.engine.PlayCard(s, playerID, data.CardID, data.JokerOption, data.RequestedSuit)
		})
}

// Disconnect handles a dropped connection. A queued player is dequeued; a
// seated player keeps their seat for the reconnect grace window, with any
// running turn timer left untouched.
func (o *Orchestrator) Disconnect(ctx context.Context, playerID, connID string) {
	if playerID == "" {
		return
	}
	r, ok := o.manager.RoomByPlayer(ctx, playerID)
	if !ok {
		o.manager.Dequeue(playerID)
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.Finished() {
		return
	}
	if current, mapped := r.Conns[playerID]; mapped && current != connID {
		return
	}
	idx := r.State.PlayerIndex(playerID)
	if idx < 0 {
		return
	}

	o.manager.DropConn(r, playerID)
	r.State.Players[idx].Connected = false
	o.manager.Commit(ctx, r)
	o.broadcastState(r)
	o.logger.Info("player disconnected", "roomId", r.ID, "playerId", playerID)

	r.Timers.Arm(room.ReconnectSlot(playerID), o.cfg.Game.ReconnectGrace(), o.withRoom(r, func(ctx context.Context) {
		idx := r.State.PlayerIndex(playerID)
		if idx < 0 || r.State.Players[idx].Connected || r.State.Finished() {
			return
		}
		o.replaceSeat(ctx, r, playerID)
	}))
}

// act runs one human action through the engine under the room lock.
func (o *Orchestrator) act(ctx context.Context, playerID, action string, throw bool, data map[string]any, fn func(game.State) (game.State, error)) error {
	r, ok := o.manager.RoomByPlayer(ctx, playerID)
	if !ok {
		return fmt.Errorf("not in a game")
	}

	if throw {
		if err := o.limiter.AllowThrow(playerID); err != nil {
			return err
		}
	} else if err := o.limiter.Allow(playerID); err != nil {
		return err
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	next, err := fn(r.State)
	if err != nil {
		return err
	}
	r.State = next
	r.Timers.Stop(room.SlotTurn)

	o.manager.Commit(ctx, r)
	o.audit(r.ID, action, playerID, data)
	o.broadcastState(r)
	o.drive(ctx, r)
	return nil
}

// startRoom drains up to four queued players, pads the table with bots
// and starts the game.
func (o *Orchestrator) startRoom(ctx context.Context) {
	taken := o.manager.TakeSeats(game.Seats)
	if len(taken) == 0 {
		return
	}

	seats := make([]game.Seat, 0, game.Seats)
	conns := make(map[string]string, len(taken))
	for _, q := range taken {
		seats = append(seats, game.Seat{ID: q.ID, Name: q.Name})
		conns[q.ID] = q.ConnID
	}
	for len(seats) < game.Seats {
		id := o.nextBotIdentity()
		seats = append(seats, game.Seat{ID: id.ID, Name: id.Name, IsBot: true})
	}

	state, draw := o.engine.NewGame(uuid.NewString(), seats)
	r := o.manager.Add(ctx, state, conns)

	summaries := make([]PlayerSummary, len(seats))
	for i, seat := range seats {
		summaries[i] = PlayerSummary{ID: seat.ID, Name: seat.Name, IsBot: seat.IsBot}
	}
	o.broadcast(r, MessageTypeDealerDraw, DealerDrawData{
		RoomID:     r.ID,
		DealerSeat: draw.DealerSeat,
		Piles:      draw.Piles,
		Players:    summaries,
	})
	o.broadcast(r, MessageTypeGameStarted, GameStartedData{RoomID: r.ID})

	r.Mu.Lock()
	defer r.Mu.Unlock()
	next, err := o.engine.StartGame(r.State)
	if err != nil {
		o.logger.Error("game failed to start", "roomId", r.ID, "err", err)
		return
	}
	r.State = next
	o.manager.Commit(ctx, r)
	o.audit(r.ID, "game_started", "", nil)
	o.broadcastState(r)
	o.drive(ctx, r)
}

// drive inspects the committed phase and schedules whatever keeps the
// game moving: a turn timer for humans, a delayed action for bots, or
// the reveal and recap pauses. Must be called with the room lock held.
func (o *Orchestrator) drive(ctx context.Context, r *room.Room) {
	switch r.State.Phase {
	case game.PhaseTrumpSelection:
		o.scheduleTurn(ctx, r, o.cfg.Game.TrumpTimeout())

	case game.PhaseBetting, game.PhasePlaying:
		o.scheduleTurn(ctx, r, o.cfg.Game.TurnTimeout())

	case game.PhaseTrickComplete:
		r.Timers.Arm(room.SlotTrickReveal, o.cfg.Game.TrickReveal(), o.withRoom(r, func(ctx context.Context) {
			o.completeTrick(ctx, r)
		}))

	case game.PhaseRoundComplete:
		o.completeRound(ctx, r)

	case game.PhaseFinished:
		o.finishGame(ctx, r)
	}
}

// scheduleTurn arms either the bot action delay or the human turn timer
// for the current seat.
func (o *Orchestrator) scheduleTurn(ctx context.Context, r *room.Room, timeout time.Duration) {
	cur := r.State.CurrentPlayer()
	if cur == nil {
		return
	}

	if cur.IsBot {
		playerID := cur.ID
		r.Timers.Arm(room.SlotTurn, botActDelay, o.withRoom(r, func(ctx context.Context) {
			o.botAct(ctx, r, playerID)
		}))
		return
	}

	playerID := cur.ID
	phase := r.State.Phase
	o.broadcast(r, MessageTypeTurnTimer, TurnTimerData{
		PlayerID:  playerID,
		ExpiresAt: o.clock.Now().Add(timeout),
	})
	r.Timers.Arm(room.SlotTurn, timeout, o.withRoom(r, func(ctx context.Context) {
		cur := r.State.CurrentPlayer()
		if cur == nil || cur.ID != playerID || cur.IsBot || r.State.Phase != phase {
			return
		}
		o.logger.Info("turn timed out", "roomId", r.ID, "playerId", playerID, "phase", phase)
		o.replaceSeat(ctx, r, playerID)
	}))
}

// botAct performs the current seat's action with the bot strategy. Bots
// go through the same engine transitions as humans.
func (o *Orchestrator) botAct(ctx context.Context, r *room.Room, playerID string) {
	cur := r.State.CurrentPlayer()
	if cur == nil || cur.ID != playerID || !cur.IsBot {
		return
	}

	var (
		next game.State
		err  error
	)
	switch r.State.Phase {
	case game.PhaseTrumpSelection:
		decision := o.bots.SelectTrump(&r.State, playerID)
		next, err = o.engine.SelectTrump(r.State, playerID, decision)
	case game.PhaseBetting:
		amount := o.bots.MakeBet(&r.State, playerID)
		next, err = o.engine.MakeBet(r.State, playerID, amount)
	case game.PhasePlaying:
		move := o.bots.MakeMove(&r.State, playerID)
		next, err = o.engine.PlayCard(r.State, playerID, move.CardID, move.JokerOption, move.RequestedSuit)
	default:
		return
	}
	if err != nil {
		// A rejected bot action must not strand the room with no pending
		// event: substitute a fresh bot on the next tick.
		o.logger.Error("bot action rejected", "roomId", r.ID, "playerId", playerID, "err", err)
		r.Timers.Arm(room.SlotTurn, botActDelay, o.withRoom(r, func(ctx context.Context) {
			cur := r.State.CurrentPlayer()
			if cur == nil || cur.ID != playerID {
				return
			}
			o.replaceSeat(ctx, r, playerID)
		}))
		return
	}

	r.State = next
	o.manager.Commit(ctx, r)
	o.audit(r.ID, "bot_action", playerID, map[string]any{"phase": string(r.State.Phase)})
	o.broadcastState(r)
	o.drive(ctx, r)
}

// completeTrick resolves the revealed trick after the reveal pause.
func (o *Orchestrator) completeTrick(ctx context.Context, r *room.Room) {
	next, result, err := o.engine.CompleteTrick(r.State)
	if err != nil {
		return
	}
	r.State = next
	o.manager.Commit(ctx, r)
	o.audit(r.ID, "trick_complete", result.WinnerID, map[string]any{"winnerSeat": result.WinnerSeat})
	o.broadcastState(r)
	o.drive(ctx, r)
}

// completeRound scores the finished round and, at a pulka boundary,
// resolves premiums and holds the recap screen before advancing.
func (o *Orchestrator) completeRound(ctx context.Context, r *room.Room) {
	next, err := o.engine.CompleteRound(r.State)
	if err != nil {
		return
	}
	r.State = next

	if r.State.Phase != game.PhasePulkaComplete {
		o.manager.Commit(ctx, r)
		o.audit(r.ID, "round_complete", "", map[string]any{"round": r.State.Round})
		o.broadcastState(r)
		o.drive(ctx, r)
		return
	}

	next, err = o.engine.CompletePulka(r.State)
	if err != nil {
		return
	}
	r.State = next
	o.manager.Commit(ctx, r)
	o.audit(r.ID, "pulka_complete", "", map[string]any{"pulka": r.State.Pulka})
	o.broadcastState(r)
	o.broadcast(r, MessageTypePulkaRecap, PulkaRecapData{
		Recap:     r.State.LastPulkaRecap,
		ExpiresAt: o.clock.Now().Add(o.cfg.Game.PulkaRecap()),
	})
	r.Timers.Arm(room.SlotPulkaRecap, o.cfg.Game.PulkaRecap(), o.withRoom(r, func(ctx context.Context) {
		next, err := o.engine.AdvanceAfterPulka(r.State)
		if err != nil {
			return
		}
		r.State = next
		o.manager.Commit(ctx, r)
		o.broadcastState(r)
		o.drive(ctx, r)
	}))
}

// finishGame hands the finished game to persistence and the ledger, then
// arms the teardown sweep.
func (o *Orchestrator) finishGame(ctx context.Context, r *room.Room) {
	winnerID, rankings := game.CalculateFinalResults(r.State.Players)
	o.broadcast(r, MessageTypeGameFinished, GameFinishedData{
		RoomID:   r.ID,
		WinnerID: winnerID,
		Rankings: rankings,
	})
	o.audit(r.ID, "game_finished", winnerID, nil)
	o.logger.Info("game finished", "roomId", r.ID, "winnerId", winnerID)

	auditLog, err := o.store.AuditLog(ctx, r.ID)
	if err != nil {
		o.logger.Warn("audit log unavailable", "roomId", r.ID, "err", err)
	}
	if err := o.Persist.RecordGame(ctx, &r.State, auditLog); err != nil {
		o.logger.Warn("game not recorded", "roomId", r.ID, "err", err)
	}
	if err := o.Ledger.Settle(ctx, r.ID, rankings); err != nil {
		o.logger.Warn("balances not settled", "roomId", r.ID, "err", err)
	}

	playerIDs := make([]string, 0, len(r.State.Players))
	for _, p := range r.State.Players {
		playerIDs = append(playerIDs, p.ID)
	}
	r.Timers.Arm(room.SlotTeardown, o.cfg.Game.TeardownDelay(), func() {
		o.manager.Remove(context.Background(), r.ID)
		for _, id := range playerIDs {
			o.limiter.Forget(id)
		}
	})
}

// replaceSeat swaps a seat for a fresh bot and lets it act if the seat
// was on turn. The turn slot belongs to the current actor, so it is only
// touched when the replaced seat was acting; replacing an idle seat must
// not reset anyone else's deadline. Must be called with the room lock
// held.
func (o *Orchestrator) replaceSeat(ctx context.Context, r *room.Room, playerID string) {
	identity := o.nextBotIdentity()
	idx := o.manager.ReplaceWithBot(r, playerID, identity)
	if idx < 0 {
		return
	}
	wasActing := r.State.CurrentIndex == idx
	r.Timers.Stop(room.ReconnectSlot(playerID))
	if wasActing {
		r.Timers.Stop(room.SlotTurn)
	}

	o.manager.Commit(ctx, r)
	o.audit(r.ID, "player_replaced", playerID, map[string]any{"botId": identity.ID})
	o.broadcast(r, MessageTypePlayerReplaced, PlayerReplacedData{
		PlayerID: playerID,
		BotID:    identity.ID,
		BotName:  identity.Name,
	})
	o.broadcastState(r)
	if wasActing {
		o.drive(ctx, r)
	}
}

// reconnect re-maps a returning player's connection and resends state. A
// live turn timer keeps its original deadline. Returns false when the
// seat is gone, e.g. already handed to a bot.
func (o *Orchestrator) reconnect(ctx context.Context, r *room.Room, playerID, connID string) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := r.State.PlayerIndex(playerID)
	if idx < 0 {
		return false
	}
	r.Timers.Stop(room.ReconnectSlot(playerID))
	r.State.Players[idx].Connected = true
	o.manager.UpdateConn(ctx, r, playerID, connID)
	o.manager.Commit(ctx, r)
	o.audit(r.ID, "player_reconnected", playerID, nil)
	o.broadcastState(r)
	o.logger.Info("player reconnected", "roomId", r.ID, "playerId", playerID)

	if !r.Timers.Armed(room.SlotTurn) {
		o.drive(ctx, r)
	}
	return true
}

// restoreRoom rebuilds a room from the durable mirror after a process
// restart, using the player's session mapping as the lookup key.
func (o *Orchestrator) restoreRoom(ctx context.Context, playerID string) (*room.Room, bool) {
	roomID, err := o.store.GetPlayerRoom(ctx, playerID)
	if err != nil {
		return nil, false
	}
	state, err := o.store.LoadState(ctx, roomID)
	if err != nil || state.Finished() {
		return nil, false
	}
	r := o.manager.Add(ctx, *state, map[string]string{})
	o.logger.Info("room restored from mirror", "roomId", roomID, "playerId", playerID)
	return r, true
}

// withRoom wraps a timer callback with the room lock and a liveness
// check against the registry.
func (o *Orchestrator) withRoom(r *room.Room, fn func(ctx context.Context)) func() {
	return func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if _, ok := o.manager.Room(r.ID); !ok {
			return
		}
		fn(context.Background())
	}
}

func (o *Orchestrator) nextBotIdentity() bot.Identity {
	o.mu.Lock()
	o.botOrdinal++
	n := o.botOrdinal
	o.mu.Unlock()
	return bot.NewIdentity(n)
}

// armFillTimer starts the bot-fill countdown unless one is already
// running; after the timeout a short queue is padded with bots.
func (o *Orchestrator) armFillTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fillTimer != nil {
		return
	}
	o.fillTimer = o.clock.AfterFunc(o.cfg.Game.BotFillTimeout(), func() {
		o.mu.Lock()
		o.fillTimer = nil
		o.mu.Unlock()
		if o.manager.QueueSize() > 0 {
			o.startRoom(context.Background())
		}
	})
}

func (o *Orchestrator) stopFillTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fillTimer != nil {
		o.fillTimer.Stop()
		o.fillTimer = nil
	}
}

// audit appends to the durable action log without blocking the room.
func (o *Orchestrator) audit(roomID, action, playerID string, data map[string]any) {
	entry := store.AuditEntry{At: o.clock.Now(), Action: action, PlayerID: playerID, Data: data}
	go func() {
		if err := o.store.AppendAudit(context.Background(), roomID, entry); err != nil {
			o.logger.Warn("audit entry not written", "roomId", roomID, "action", action, "err", err)
		}
	}()
}

func (o *Orchestrator) send(connID string, t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		o.logger.Error("message not encoded", "type", t, "err", err)
		return
	}
	o.sender.Send(connID, msg)
}

// broadcast sends one payload to every connected seat in the room.
func (o *Orchestrator) broadcast(r *room.Room, t MessageType, data any) {
	for _, connID := range r.Conns {
		o.send(connID, t, data)
	}
}

// broadcastState sends each seat its own sanitized view.
func (o *Orchestrator) broadcastState(r *room.Room) {
	for playerID, connID := range r.Conns {
		o.send(connID, MessageTypeGameState, r.State.ViewFor(playerID))
	}
}
