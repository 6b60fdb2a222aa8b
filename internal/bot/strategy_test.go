package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokerd/internal/deck"
	"jokerd/internal/game"
	"jokerd/internal/randutil"
)

func intp(v int) *int { return &v }

func betState(hand []deck.Card, trump deck.Suit) *game.State {
	return &game.State{
		Players: []game.Player{
			{ID: "bot-1", Hand: hand},
			{ID: "p2"},
			{ID: "p3"},
			{ID: "p4"},
		},
		DealerIndex:    3,
		CardsPerPlayer: len(hand),
		Trump:          trump,
		Phase:          game.PhaseBetting,
	}
}

func TestMakeBetCountsStrongCards(t *testing.T) {
	s := New(randutil.New(1))

	hand := []deck.Card{
		deck.Joker(1),
		deck.Standard(deck.Spades, deck.Ace),
		deck.Standard(deck.Spades, deck.Queen),
		deck.Standard(deck.Hearts, deck.Seven),
		deck.Standard(deck.Diamonds, deck.Eight),
	}
	// Joker (1) + trump ace (0.8) + trump queen (0.8) = 2.6.
	bet := s.MakeBet(betState(hand, deck.Spades), "bot-1")
	assert.Equal(t, 2, bet)

	// Without trump the ace counts 0.5 and the queen nothing.
	bet = s.MakeBet(betState(hand, deck.NoSuit), "bot-1")
	assert.Equal(t, 1, bet)
}

func TestMakeBetAvoidsForbiddenValue(t *testing.T) {
	s := New(randutil.New(1))

	hand := []deck.Card{deck.Standard(deck.Hearts, deck.Seven)}
	state := betState(hand, deck.NoSuit)

	// Make the bot the dealer with a forbidden bet of 0.
	state.DealerIndex = 0
	state.Players[1].Bet = intp(0)
	state.Players[2].Bet = intp(0)
	state.Players[3].Bet = intp(1)

	bet := s.MakeBet(state, "bot-1")
	assert.Equal(t, 1, bet, "bot must step off the forbidden zero")
}

func TestMakeMoveIsAlwaysLegal(t *testing.T) {
	s := New(randutil.New(7))

	hand := []deck.Card{
		deck.Standard(deck.Hearts, deck.Seven),
		deck.Standard(deck.Hearts, deck.Ace),
		deck.Standard(deck.Spades, deck.King),
	}
	state := betState(hand, deck.NoSuit)
	state.Phase = game.PhasePlaying
	state.Table = []game.TableCard{
		{Card: deck.Standard(deck.Hearts, deck.Ten), PlayerID: "p2"},
	}

	for i := 0; i < 50; i++ {
		move := s.MakeMove(state, "bot-1")
		card, ok := game.HandContains(hand, move.CardID)
		require.True(t, ok)
		assert.NoError(t, game.ValidateMove(hand, card, state.Table, state.Trump))
		assert.Equal(t, deck.Hearts, card.Suit, "must follow suit")
	}
}

func TestMakeMoveJokerDeclarations(t *testing.T) {
	s := New(randutil.New(7))

	hand := []deck.Card{deck.Joker(1)}
	state := betState(hand, deck.NoSuit)
	state.Phase = game.PhasePlaying

	// Leading: High or Low plus a suit.
	move := s.MakeMove(state, "bot-1")
	assert.Contains(t, []game.JokerOption{game.JokerHigh, game.JokerLow}, move.JokerOption)
	assert.True(t, move.RequestedSuit.Valid())

	// Responding while a trick is still needed: Top.
	state.Table = []game.TableCard{
		{Card: deck.Standard(deck.Hearts, deck.Ten), PlayerID: "p2"},
	}
	state.Players[0].Bet = intp(1)
	move = s.MakeMove(state, "bot-1")
	assert.Equal(t, game.JokerTop, move.JokerOption)
	assert.Equal(t, deck.NoSuit, move.RequestedSuit)

	// Bet already met: Bottom.
	state.Players[0].Tricks = 1
	move = s.MakeMove(state, "bot-1")
	assert.Equal(t, game.JokerBottom, move.JokerOption)
}

func TestSelectTrumpPicksStrongSuit(t *testing.T) {
	s := New(randutil.New(7))

	state := betState([]deck.Card{
		deck.Standard(deck.Clubs, deck.Ace),
		deck.Standard(deck.Clubs, deck.King),
		deck.Standard(deck.Hearts, deck.Seven),
	}, deck.NoSuit)
	state.Phase = game.PhaseTrumpSelection
	state.TrumpSelection = &game.TrumpSelection{
		ChooserID: "bot-1", VisibleCount: 3, MaxRedeals: 2,
	}

	decision := s.SelectTrump(state, "bot-1")
	assert.Equal(t, game.DecideSuit, decision.Kind)
	assert.Equal(t, deck.Clubs, decision.Suit)
}

func TestNewIdentity(t *testing.T) {
	a := NewIdentity(0)
	b := NewIdentity(1)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, a.ID, "bot-")
	assert.Contains(t, a.Name, "(bot)")
}
