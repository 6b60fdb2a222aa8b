package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokerd/internal/deck"
	"jokerd/internal/randutil"
)

func testSeats() []Seat {
	return []Seat{
		{ID: "p1", Name: "Anna"},
		{ID: "p2", Name: "Giorgi"},
		{ID: "p3", Name: "Nino"},
		{ID: "p4", Name: "Levan"},
	}
}

func newTestGame(t *testing.T, seed int64) (*Engine, State) {
	t.Helper()
	e := NewEngine(randutil.New(seed))
	state, draw := e.NewGame("room-1", testSeats())

	require.Len(t, state.Players, 4)
	require.GreaterOrEqual(t, draw.DealerSeat, 0)
	require.Less(t, draw.DealerSeat, 4)
	return e, state
}

// playAnyCard plays the current seat's first legal card, declaring joker
// options as needed.
func playAnyCard(t *testing.T, e *Engine, s State) State {
	t.Helper()
	player := s.CurrentPlayer()
	require.NotNil(t, player)

	valid := ValidCards(player.Hand, s.Table, s.Trump)
	require.NotEmpty(t, valid, "no legal card for %s", player.ID)

	card := valid[0]
	option, requested := JokerOption(""), deck.NoSuit
	if card.IsJoker() {
		if len(s.Table) == 0 {
			option, requested = JokerHigh, deck.Hearts
		} else {
			option = JokerTop
		}
	}

	next, err := e.PlayCard(s, player.ID, card.ID, option, requested)
	require.NoError(t, err)
	return next
}

func TestNewGameSeatsDealerLast(t *testing.T) {
	e := NewEngine(randutil.New(3))
	state, draw := e.NewGame("room-1", testSeats())

	assert.Equal(t, 3, state.DealerIndex, "dealer sits last in score-sheet order")
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, PhaseWaiting, state.Phase)
	assert.Equal(t, 1, state.CardsPerPlayer)

	// The seat that drew the ace sits at the dealer position after rotation.
	assert.Equal(t, testSeats()[draw.DealerSeat].ID, state.Players[3].ID)
}

func TestStartGameDealsFirstRound(t *testing.T) {
	e, state := newTestGame(t, 11)

	state, err := e.StartGame(state)
	require.NoError(t, err)

	assert.Equal(t, PhaseBetting, state.Phase)
	assert.Equal(t, 0, state.CurrentIndex)
	for i := range state.Players {
		assert.Len(t, state.Players[i].Hand, 1)
		assert.Nil(t, state.Players[i].Bet)
	}

	_, err = e.StartGame(state)
	assert.Equal(t, CodeWrongPhase, ruleCode(t, err))
}

func TestMakeBetTurnOrderAndTransition(t *testing.T) {
	e, state := newTestGame(t, 11)
	state, err := e.StartGame(state)
	require.NoError(t, err)

	_, err = e.MakeBet(state, state.Players[2].ID, 0)
	assert.Equal(t, CodeNotYourTurn, ruleCode(t, err))

	for i := 0; i < 4; i++ {
		state, err = e.MakeBet(state, state.Players[state.CurrentIndex].ID, 0)
		require.NoError(t, err)
	}

	assert.Equal(t, PhasePlaying, state.Phase)
	assert.Equal(t, 0, state.CurrentIndex, "seat after the dealer leads")
}

func TestDealerForbiddenBet(t *testing.T) {
	e, state := newTestGame(t, 11)
	state, err := e.StartGame(state)
	require.NoError(t, err)

	// Three zeros leave the dealer unable to bet 1 in a 1-card round.
	for i := 0; i < 3; i++ {
		state, err = e.MakeBet(state, state.Players[state.CurrentIndex].ID, 0)
		require.NoError(t, err)
	}

	dealer := state.Players[state.DealerIndex].ID
	_, err = e.MakeBet(state, dealer, 1)
	assert.Equal(t, CodeForbiddenBet, ruleCode(t, err))

	state, err = e.MakeBet(state, dealer, 0)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, state.Phase)
}

func TestOneCardRoundEndToEnd(t *testing.T) {
	e, state := newTestGame(t, 11)
	state, err := e.StartGame(state)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		state, err = e.MakeBet(state, state.Players[state.CurrentIndex].ID, 0)
		require.NoError(t, err)
	}

	for i := 0; i < 4; i++ {
		state = playAnyCard(t, e, state)
	}
	require.Equal(t, PhaseTrickComplete, state.Phase)

	state, result, err := e.CompleteTrick(state)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Players[result.WinnerSeat].Tricks)
	assert.Empty(t, state.Table)
	require.Equal(t, PhaseRoundComplete, state.Phase)

	state, err = e.CompleteRound(state)
	require.NoError(t, err)

	// The winner took a trick against a zero bet (10 points); everyone
	// else passed cleanly (50 points).
	require.Len(t, state.History, 1)
	entry := state.History[0]
	for _, p := range state.Players {
		if p.ID == result.WinnerID {
			assert.Equal(t, 10, entry.Scores[p.ID])
			assert.True(t, p.Spoiled)
		} else {
			assert.Equal(t, 50, entry.Scores[p.ID])
			assert.False(t, p.Spoiled)
		}
	}

	assert.Equal(t, 2, state.Round)
	assert.Equal(t, 2, state.CardsPerPlayer)
	assert.Equal(t, PhaseBetting, state.Phase)
	assert.Equal(t, 0, state.DealerIndex, "dealer advances each round")
	for i := range state.Players {
		assert.Len(t, state.Players[i].Hand, 2)
		assert.Equal(t, 0, state.Players[i].Tricks)
	}
}

func TestTrickWinnerLeadsNext(t *testing.T) {
	e, state := newTestGame(t, 17)
	state, err := e.StartGame(state)
	require.NoError(t, err)

	// Walk to round 2 so there are two tricks.
	for state.Round == 1 {
		state = advanceOneStep(t, e, state)
	}
	require.Equal(t, 2, state.Round)

	for state.Phase == PhaseBetting {
		state = advanceOneStep(t, e, state)
	}
	for i := 0; i < 4; i++ {
		state = playAnyCard(t, e, state)
	}

	state, result, err := e.CompleteTrick(state)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, state.Phase, "more tricks remain")
	assert.Equal(t, result.WinnerSeat, state.CurrentIndex, "winner leads the next trick")
}

// advanceOneStep drives the state one action forward with trivial choices
// (zero bets where legal, first valid card, no-trump decisions).
func advanceOneStep(t *testing.T, e *Engine, s State) State {
	t.Helper()
	var err error
	switch s.Phase {
	case PhaseWaiting:
		s, err = e.StartGame(s)
	case PhaseTrumpSelection:
		s, err = e.SelectTrump(s, s.TrumpSelection.ChooserID, TrumpDecision{Kind: DecideNoTrump})
	case PhaseBetting:
		player := s.CurrentPlayer()
		bets := make([]*int, len(s.Players))
		for i := range s.Players {
			bets[i] = s.Players[i].Bet
		}
		valid := ValidBets(bets, s.CardsPerPlayer, s.CurrentIndex, s.DealerIndex)
		require.NotEmpty(t, valid)
		s, err = e.MakeBet(s, player.ID, valid[0])
	case PhasePlaying:
		return playAnyCard(t, e, s)
	case PhaseTrickComplete:
		s, _, err = e.CompleteTrick(s)
	case PhaseRoundComplete:
		s, err = e.CompleteRound(s)
	case PhasePulkaComplete:
		if s.LastPulkaRecap == nil || s.LastPulkaRecap.Pulka != s.Pulka {
			s, err = e.CompletePulka(s)
		} else {
			s, err = e.AdvanceAfterPulka(s)
		}
	default:
		t.Fatalf("unexpected phase %s", s.Phase)
	}
	require.NoError(t, err)
	return s
}

func TestFullGameCompletes(t *testing.T) {
	e, state := newTestGame(t, 99)

	for steps := 0; !state.Finished(); steps++ {
		require.Less(t, steps, 5000, "game did not terminate")
		state = advanceOneStep(t, e, state)
	}

	assert.Equal(t, TotalRounds, state.Round)
	assert.Len(t, state.History, TotalRounds)
	assert.NotEmpty(t, state.WinnerID)
	for i := range state.Players {
		assert.Len(t, state.Players[i].PulkaScores, TotalPulkas)
		assert.Len(t, state.Players[i].RoundScores, TotalRounds)
		assert.Len(t, state.Players[i].JokerCounts, TotalRounds)
	}
}

func TestTrumpSelectionFlow(t *testing.T) {
	e, state := newTestGame(t, 23)

	// Fabricate entry into a 9-card round the same way round advancement
	// does.
	state.Round = 9
	state.Pulka = 2
	state.CardsPerPlayer = CardsForRound(9)
	require.Equal(t, 9, state.CardsPerPlayer)
	e.dealRound(&state)

	require.Equal(t, PhaseTrumpSelection, state.Phase)
	ts := state.TrumpSelection
	require.NotNil(t, ts)

	chooser := nextSeat(state.DealerIndex)
	assert.Equal(t, chooser, ts.ChooserSeat)
	assert.Equal(t, state.Players[chooser].ID, ts.ChooserID)
	assert.Equal(t, chooser, state.CurrentIndex)
	assert.Len(t, state.Players[chooser].Hand, VisibleCount)
	for i := range state.Players {
		if i != chooser {
			assert.Empty(t, state.Players[i].Hand)
		}
	}

	// Only the chooser may decide.
	other := state.Players[state.DealerIndex].ID
	_, err := e.SelectTrump(state, other, TrumpDecision{Kind: DecideNoTrump})
	assert.Equal(t, CodeNotChooser, ruleCode(t, err))

	// A suit decision releases the pending cards everywhere.
	next, err := e.SelectTrump(state, ts.ChooserID, TrumpDecision{Kind: DecideSuit, Suit: deck.Spades})
	require.NoError(t, err)
	assert.Equal(t, deck.Spades, next.Trump)
	assert.Equal(t, PhaseBetting, next.Phase)
	assert.Nil(t, next.TrumpSelection)
	for i := range next.Players {
		assert.Len(t, next.Players[i].Hand, 9)
		require.Len(t, next.Players[i].JokerCounts, 1)
		assert.Equal(t, countJokers(next.Players[i].Hand), next.Players[i].JokerCounts[0])
	}
}

func TestTrumpSelectionRedeal(t *testing.T) {
	e, state := newTestGame(t, 23)
	state.Round = 9
	state.Pulka = 2
	state.CardsPerPlayer = CardsForRound(9)
	e.dealRound(&state)
	require.Equal(t, PhaseTrumpSelection, state.Phase)

	chooserID := state.TrumpSelection.ChooserID
	before := append([]deck.Card(nil), state.Players[state.TrumpSelection.ChooserSeat].Hand...)

	state, err := e.SelectTrump(state, chooserID, TrumpDecision{Kind: DecideRedeal})
	require.NoError(t, err)
	assert.Equal(t, 1, state.TrumpSelection.RedealCount)
	assert.Equal(t, PhaseTrumpSelection, state.Phase)
	assert.Len(t, state.Players[state.TrumpSelection.ChooserSeat].Hand, VisibleCount)

	after := state.Players[state.TrumpSelection.ChooserSeat].Hand
	same := len(before) == len(after)
	if same {
		for i := range before {
			if before[i] != after[i] {
				same = false
				break
			}
		}
	}
	assert.False(t, same, "redeal should produce a different visible hand")

	state, err = e.SelectTrump(state, chooserID, TrumpDecision{Kind: DecideRedeal})
	require.NoError(t, err)
	assert.Equal(t, 2, state.TrumpSelection.RedealCount)

	_, err = e.SelectTrump(state, chooserID, TrumpDecision{Kind: DecideRedeal})
	assert.Equal(t, CodeRedealNotAllowed, ruleCode(t, err))

	state, err = e.SelectTrump(state, chooserID, TrumpDecision{Kind: DecideNoTrump})
	require.NoError(t, err)
	assert.Equal(t, deck.NoSuit, state.Trump)
	assert.Equal(t, PhaseBetting, state.Phase)
}

func TestPulkaCompletionAppliesPremiums(t *testing.T) {
	e, state := newTestGame(t, 41)

	for state.Pulka == 1 && state.Phase != PhasePulkaComplete {
		state = advanceOneStep(t, e, state)
	}
	require.Equal(t, PhasePulkaComplete, state.Phase)

	totalsBefore := make(map[string]int)
	for _, p := range state.Players {
		totalsBefore[p.ID] = p.TotalScore
	}

	state, err := e.CompletePulka(state)
	require.NoError(t, err)
	recap := state.LastPulkaRecap
	require.NotNil(t, recap)
	assert.Equal(t, 1, recap.Pulka)

	for _, p := range state.Players {
		assert.Equal(t, totalsBefore[p.ID]+recap.Deltas[p.ID], p.TotalScore)
		require.Len(t, p.PulkaScores, 1)
		assert.Equal(t, p.TotalScore, p.PulkaScores[0])
	}

	state, err = e.AdvanceAfterPulka(state)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Pulka)
	assert.Equal(t, 9, state.Round)
	assert.Equal(t, PhaseTrumpSelection, state.Phase)
	for _, p := range state.Players {
		assert.False(t, p.Spoiled)
		assert.False(t, p.TookAllInPulka)
		assert.False(t, p.PerfectPassInPulka)
	}
}

func TestTransitionsLeaveInputUntouched(t *testing.T) {
	e, state := newTestGame(t, 11)
	started, err := e.StartGame(state)
	require.NoError(t, err)

	assert.Equal(t, PhaseWaiting, state.Phase, "input state must not be mutated")
	assert.Empty(t, state.Players[0].Hand)
	assert.Equal(t, PhaseBetting, started.Phase)

	// A failed transition returns the input unchanged.
	_, err = e.MakeBet(started, started.Players[1].ID, 0)
	require.Error(t, err)
	assert.Nil(t, started.Players[1].Bet)
}

func TestViewForSanitizesHands(t *testing.T) {
	e, state := newTestGame(t, 11)
	state, err := e.StartGame(state)
	require.NoError(t, err)

	view := state.ViewFor("p1")
	for _, pv := range view.Players {
		if pv.ID == "p1" {
			assert.Len(t, pv.Hand, 1)
		} else {
			assert.Empty(t, pv.Hand, "other hands must be zeroed")
			assert.Equal(t, 1, pv.HandCount)
		}
	}

	// The acting seat gets its legal bets precomputed.
	current := state.Players[state.CurrentIndex].ID
	view = state.ViewFor(current)
	assert.NotEmpty(t, view.ValidBets)
}
