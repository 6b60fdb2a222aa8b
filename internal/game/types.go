// Package game implements the Georgian Joker rules as pure transition
// functions over an immutable state value. Nothing in this package touches
// clocks, sockets or stores; the concurrency shell owns all side effects.
package game

import (
	"jokerd/internal/deck"
)

// Phase is the game's lifecycle phase. The phase fully determines which
// state fields are meaningful.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseTrumpSelection Phase = "trump_selection"
	PhaseBetting        Phase = "betting"
	PhasePlaying        Phase = "playing"
	PhaseTrickComplete  Phase = "trick_complete"
	PhaseRoundComplete  Phase = "round_complete"
	PhasePulkaComplete  Phase = "pulka_complete"
	PhaseFinished       Phase = "finished"
)

// JokerOption is the declared mode of a played joker. High/Low are lead
// options (with a requested suit); Top/Bottom are response options.
type JokerOption string

const (
	JokerHigh   JokerOption = "high"
	JokerLow    JokerOption = "low"
	JokerTop    JokerOption = "top"
	JokerBottom JokerOption = "bottom"
)

// TableCard is a card on the table together with who played it and, for
// jokers, how it was declared.
type TableCard struct {
	Card          deck.Card   `json:"card"`
	PlayerID      string      `json:"playerId"`
	JokerOption   JokerOption `json:"jokerOption,omitempty"`
	RequestedSuit deck.Suit   `json:"requestedSuit,omitempty"`
}

// Player is one of the four seats.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsBot     bool   `json:"isBot"`
	Connected bool   `json:"connected"`

	Hand   []deck.Card `json:"hand"`
	Bet    *int        `json:"bet"`
	Tricks int         `json:"tricks"`

	RoundScores []int `json:"roundScores"`
	PulkaScores []int `json:"pulkaScores"`
	TotalScore  int   `json:"totalScore"`

	// Per-pulka achievement flags, reset when a new pulka starts.
	Spoiled            bool `json:"spoiled"`
	TookAllInPulka     bool `json:"tookAllInPulka"`
	PerfectPassInPulka bool `json:"perfectPassInPulka"`

	// JokerCounts records how many jokers were in the dealt hand, one entry
	// per round, for scoresheet reconstruction.
	JokerCounts []int `json:"jokerCounts"`
}

func (p *Player) clone() Player {
	out := *p
	out.Hand = append([]deck.Card(nil), p.Hand...)
	out.RoundScores = append([]int(nil), p.RoundScores...)
	out.PulkaScores = append([]int(nil), p.PulkaScores...)
	out.JokerCounts = append([]int(nil), p.JokerCounts...)
	if p.Bet != nil {
		bet := *p.Bet
		out.Bet = &bet
	}
	return out
}

// TrumpSelection is the transient sub-state for 9-card rounds while the
// chooser decides on a trump. Pending holds the withheld cards per seat.
type TrumpSelection struct {
	ChooserID    string        `json:"chooserId"`
	ChooserSeat  int           `json:"chooserSeat"`
	VisibleCount int           `json:"visibleCount"`
	RedealCount  int           `json:"redealCount"`
	MaxRedeals   int           `json:"maxRedeals"`
	Pending      [][]deck.Card `json:"-"`
}

// RedealAllowed reports whether the chooser may still request a redeal.
func (ts *TrumpSelection) RedealAllowed() bool {
	return ts.RedealCount < ts.MaxRedeals
}

// RoundHistory is the immutable record appended once per completed round.
type RoundHistory struct {
	Round          int            `json:"round"`
	Pulka          int            `json:"pulka"`
	CardsPerPlayer int            `json:"cardsPerPlayer"`
	Trump          deck.Suit      `json:"trump,omitempty"`
	Bets           map[string]int `json:"bets"`
	Tricks         map[string]int `json:"tricks"`
	Scores         map[string]int `json:"scores"`
	JokerCounts    map[string]int `json:"jokerCounts"`
}

// Premium is one seat's entry in the pulka premium resolution.
type Premium struct {
	PlayerID    string `json:"playerId"`
	Received    int    `json:"received"`
	TakenFromID string `json:"takenFromId,omitempty"`
	TakenAmount int    `json:"takenAmount"`
}

// PulkaRecap is the resolved premium outcome of a completed pulka, kept on
// the state for the recap screen.
type PulkaRecap struct {
	Pulka    int            `json:"pulka"`
	Premiums []Premium      `json:"premiums"`
	Deltas   map[string]int `json:"deltas"`
}

// State is the aggregate game state. Transitions never mutate a State in
// place; they clone and return a new value.
type State struct {
	ID string `json:"id"`

	Players      []Player `json:"players"`
	DealerIndex  int      `json:"dealerIndex"`
	CurrentIndex int      `json:"currentPlayerIndex"`

	Round          int   `json:"round"`
	Pulka          int   `json:"pulka"`
	CardsPerPlayer int   `json:"cardsPerPlayer"`
	Phase          Phase `json:"phase"`

	Trump     deck.Suit  `json:"trump,omitempty"`
	TrumpCard *deck.Card `json:"trumpCard,omitempty"`

	Table          []TableCard     `json:"table"`
	TrumpSelection *TrumpSelection `json:"trumpSelection,omitempty"`

	History        []RoundHistory `json:"history"`
	LastPulkaRecap *PulkaRecap    `json:"lastPulkaRecap,omitempty"`
	WinnerID       string         `json:"winnerId,omitempty"`
}

// clone performs the deep copy behind every functional update. History
// entries are immutable once appended, so the slice header copy suffices
// for them.
func (s *State) clone() State {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i := range s.Players {
		out.Players[i] = s.Players[i].clone()
	}
	out.Table = append([]TableCard(nil), s.Table...)
	out.History = append([]RoundHistory(nil), s.History...)
	if s.TrumpSelection != nil {
		ts := *s.TrumpSelection
		ts.Pending = make([][]deck.Card, len(s.TrumpSelection.Pending))
		for i, pending := range s.TrumpSelection.Pending {
			ts.Pending[i] = append([]deck.Card(nil), pending...)
		}
		out.TrumpSelection = &ts
	}
	if s.TrumpCard != nil {
		card := *s.TrumpCard
		out.TrumpCard = &card
	}
	return out
}

// Clone returns a deep copy, for handing a snapshot across a goroutine
// boundary without aliasing the live state.
func (s *State) Clone() State {
	return s.clone()
}

// PlayerIndex returns the seat index for a player id, or -1.
func (s *State) PlayerIndex(playerID string) int {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the seat whose turn it is.
func (s *State) CurrentPlayer() *Player {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentIndex]
}

// Finished reports whether the game reached its terminal phase.
func (s *State) Finished() bool {
	return s.Phase == PhaseFinished
}

// TrumpDecisionKind enumerates the chooser's options in a 9-card round.
type TrumpDecisionKind string

const (
	DecideSuit    TrumpDecisionKind = "suit"
	DecideNoTrump TrumpDecisionKind = "no_trump"
	DecideRedeal  TrumpDecisionKind = "redeal"
)

// TrumpDecision is the chooser's decision during trump selection.
type TrumpDecision struct {
	Kind TrumpDecisionKind `json:"kind"`
	Suit deck.Suit         `json:"suit,omitempty"`
}
