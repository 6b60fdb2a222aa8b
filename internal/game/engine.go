package game

import (
	rand "math/rand/v2"

	"jokerd/internal/deck"
)

// Seat describes one participant handed to NewGame, in join order.
type Seat struct {
	ID    string
	Name  string
	IsBot bool
}

// DealerDraw is the tuzovanie outcome, indexed by the seats slice given to
// NewGame (pre-rotation order), for the client reveal.
type DealerDraw struct {
	DealerSeat int           `json:"dealerSeat"`
	Piles      [][]deck.Card `json:"piles"`
}

// TrickResult reports a resolved trick.
type TrickResult struct {
	WinnerSeat int    `json:"winnerSeat"`
	WinnerID   string `json:"winnerId"`
}

// Engine exposes the rule transitions. It owns only the RNG used for
// shuffling; all other inputs and outputs are explicit, so every
// transition is a pure function of (state, args, deal order).
type Engine struct {
	rng *rand.Rand
}

// NewEngine builds an engine around a seeded RNG.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// NewGame performs tuzovanie over the given seats, rotates the table so
// the dealer sits last (score-sheet order) and returns the initial
// waiting state plus the draw for the reveal animation.
func (e *Engine) NewGame(id string, seats []Seat) (State, DealerDraw) {
	dealerSeat, piles := deck.Tuzovanie(e.rng, len(seats))
	draw := DealerDraw{DealerSeat: dealerSeat, Piles: piles}

	players := make([]Player, 0, len(seats))
	for offset := 1; offset <= len(seats); offset++ {
		seat := seats[(dealerSeat+offset)%len(seats)]
		players = append(players, Player{
			ID:        seat.ID,
			Name:      seat.Name,
			IsBot:     seat.IsBot,
			Connected: !seat.IsBot,
		})
	}

	dealerIndex := len(players) - 1
	state := State{
		ID:             id,
		Players:        players,
		DealerIndex:    dealerIndex,
		CurrentIndex:   nextSeat(dealerIndex),
		Round:          1,
		Pulka:          1,
		CardsPerPlayer: CardsForRound(1),
		Phase:          PhaseWaiting,
		Table:          []TableCard{},
	}
	return state, draw
}

// StartGame deals the first round.
func (e *Engine) StartGame(s State) (State, error) {
	if s.Phase != PhaseWaiting {
		return s, NewRuleError(CodeWrongPhase, "game already started")
	}
	next := s.clone()
	e.dealRound(&next)
	return next, nil
}

// MakeBet places a bet for the acting seat. Once all four bets are in,
// play begins with the seat after the dealer.
func (e *Engine) MakeBet(s State, playerID string, amount int) (State, error) {
	if s.Phase != PhaseBetting {
		return s, NewRuleError(CodeWrongPhase, "not in betting phase")
	}
	idx := s.PlayerIndex(playerID)
	if idx != s.CurrentIndex {
		return s, NewRuleError(CodeNotYourTurn, "not your turn to bet")
	}

	currentBets := make([]*int, len(s.Players))
	for i := range s.Players {
		currentBets[i] = s.Players[i].Bet
	}
	if err := ValidateBet(currentBets, amount, s.CardsPerPlayer, idx, s.DealerIndex); err != nil {
		return s, err
	}

	next := s.clone()
	bet := amount
	next.Players[idx].Bet = &bet

	all := true
	for i := range next.Players {
		if next.Players[i].Bet == nil {
			all = false
			break
		}
	}
	if all {
		next.Phase = PhasePlaying
		next.CurrentIndex = nextSeat(next.DealerIndex)
	} else {
		next.CurrentIndex = nextSeat(idx)
	}
	return next, nil
}

// PlayCard plays a card from the acting seat's hand onto the table. The
// fourth card moves the phase to TrickComplete for the reveal delay.
func (e *Engine) PlayCard(s State, playerID, cardID string, option JokerOption, requested deck.Suit) (State, error) {
	if s.Phase != PhasePlaying {
		return s, NewRuleError(CodeWrongPhase, "not in playing phase")
	}
	idx := s.PlayerIndex(playerID)
	if idx != s.CurrentIndex {
		return s, NewRuleError(CodeNotYourTurn, "not your turn")
	}

	player := &s.Players[idx]
	card, ok := HandContains(player.Hand, cardID)
	if !ok {
		return s, NewRuleError(CodeCardNotInHand, "card %s not in hand", cardID)
	}
	if err := ValidateMove(player.Hand, card, s.Table, s.Trump); err != nil {
		return s, err
	}
	if card.IsJoker() {
		if err := ValidateJokerPlay(s.Table, option, requested); err != nil {
			return s, err
		}
	} else {
		option, requested = "", deck.NoSuit
	}

	next := s.clone()
	hand := next.Players[idx].Hand
	for i := range hand {
		if hand[i].ID == cardID {
			next.Players[idx].Hand = append(hand[:i:i], hand[i+1:]...)
			break
		}
	}
	next.Table = append(next.Table, TableCard{
		Card:          card,
		PlayerID:      playerID,
		JokerOption:   option,
		RequestedSuit: requested,
	})

	if len(next.Table) == len(next.Players) {
		next.Phase = PhaseTrickComplete
	} else {
		next.CurrentIndex = nextSeat(idx)
	}
	return next, nil
}

// CompleteTrick resolves a full table: the winner collects the trick and
// leads the next one, or the round completes when all hands are empty.
func (e *Engine) CompleteTrick(s State) (State, TrickResult, error) {
	if s.Phase != PhaseTrickComplete {
		return s, TrickResult{}, NewRuleError(CodeWrongPhase, "not in trick complete phase")
	}

	winnerTable := DetermineTrickWinner(s.Table, s.Trump)
	winnerID := s.Table[winnerTable].PlayerID
	winnerSeat := s.PlayerIndex(winnerID)

	next := s.clone()
	next.Players[winnerSeat].Tricks++
	next.Table = []TableCard{}
	next.CurrentIndex = winnerSeat

	roundDone := true
	for i := range next.Players {
		if len(next.Players[i].Hand) > 0 {
			roundDone = false
			break
		}
	}
	if roundDone {
		next.Phase = PhaseRoundComplete
	} else {
		next.Phase = PhasePlaying
	}
	return next, TrickResult{WinnerSeat: winnerSeat, WinnerID: winnerID}, nil
}

func nextSeat(i int) int {
	return (i + 1) % Seats
}
