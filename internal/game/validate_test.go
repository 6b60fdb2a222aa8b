package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokerd/internal/deck"
)

func ruleCode(t *testing.T, err error) string {
	t.Helper()
	re, ok := AsRuleError(err)
	require.True(t, ok, "expected a rule error, got %v", err)
	return re.Code
}

func TestValidateMoveEmptyTable(t *testing.T) {
	hand := []deck.Card{deck.Standard(deck.Hearts, deck.Seven), deck.Standard(deck.Spades, deck.Ace)}
	assert.NoError(t, ValidateMove(hand, hand[0], nil, deck.NoSuit))
	assert.NoError(t, ValidateMove(hand, hand[1], nil, deck.NoSuit))
}

func TestValidateMoveFollowSuit(t *testing.T) {
	hand := []deck.Card{deck.Standard(deck.Hearts, deck.Seven), deck.Standard(deck.Spades, deck.Ace)}
	table := []TableCard{tc(deck.Hearts, deck.King, "p1")}

	assert.NoError(t, ValidateMove(hand, hand[0], table, deck.NoSuit))

	err := ValidateMove(hand, hand[1], table, deck.NoSuit)
	assert.Equal(t, CodeMustFollowSuit, ruleCode(t, err))
}

func TestValidateMoveMustPlayTrump(t *testing.T) {
	hand := []deck.Card{deck.Standard(deck.Diamonds, deck.Seven), deck.Standard(deck.Spades, deck.Ace)}
	table := []TableCard{tc(deck.Hearts, deck.King, "p1")}

	assert.NoError(t, ValidateMove(hand, hand[1], table, deck.Spades))

	err := ValidateMove(hand, hand[0], table, deck.Spades)
	assert.Equal(t, CodeMustPlayTrump, ruleCode(t, err))
}

func TestValidateMoveNoLeadSuitNoTrump(t *testing.T) {
	hand := []deck.Card{deck.Standard(deck.Diamonds, deck.Seven), deck.Standard(deck.Clubs, deck.Ace)}
	table := []TableCard{tc(deck.Hearts, deck.King, "p1")}

	assert.NoError(t, ValidateMove(hand, hand[0], table, deck.NoSuit))
	assert.NoError(t, ValidateMove(hand, hand[1], table, deck.NoSuit))
}

func TestValidateMoveJokerAlwaysLegal(t *testing.T) {
	joker := deck.Joker(1)
	hand := []deck.Card{deck.Standard(deck.Hearts, deck.Seven), joker}
	table := []TableCard{tc(deck.Hearts, deck.King, "p1")}

	assert.NoError(t, ValidateMove(hand, joker, table, deck.NoSuit))
}

func TestValidateMoveJokerHighResponse(t *testing.T) {
	table := []TableCard{jokerTC(1, JokerHigh, deck.Hearts, "p1")}

	hand := []deck.Card{
		deck.Standard(deck.Hearts, deck.Seven),
		deck.Standard(deck.Hearts, deck.King),
		deck.Standard(deck.Hearts, deck.Ace),
	}
	assert.NoError(t, ValidateMove(hand, hand[2], table, deck.NoSuit))

	err := ValidateMove(hand, hand[0], table, deck.NoSuit)
	assert.Equal(t, CodeMustPlayHighest, ruleCode(t, err))

	// Without the requested suit, trump is forced.
	hand = []deck.Card{deck.Standard(deck.Diamonds, deck.Seven), deck.Standard(deck.Spades, deck.Ace)}
	assert.NoError(t, ValidateMove(hand, hand[1], table, deck.Spades))
	err = ValidateMove(hand, hand[0], table, deck.Spades)
	assert.Equal(t, CodeMustPlayTrump, ruleCode(t, err))

	// Neither requested suit nor trump: anything goes.
	assert.NoError(t, ValidateMove(hand, hand[0], table, deck.NoSuit))
}

func TestValidateMoveJokerLowLeadFollowsRequestedSuit(t *testing.T) {
	table := []TableCard{jokerTC(1, JokerLow, deck.Hearts, "p1")}
	hand := []deck.Card{deck.Standard(deck.Hearts, deck.Seven), deck.Standard(deck.Spades, deck.Ace)}

	assert.NoError(t, ValidateMove(hand, hand[0], table, deck.NoSuit))
	err := ValidateMove(hand, hand[1], table, deck.NoSuit)
	assert.Equal(t, CodeMustFollowSuit, ruleCode(t, err))
}

func TestValidateJokerPlay(t *testing.T) {
	var empty []TableCard
	table := []TableCard{tc(deck.Hearts, deck.King, "p1")}

	assert.NoError(t, ValidateJokerPlay(empty, JokerHigh, deck.Hearts))
	assert.NoError(t, ValidateJokerPlay(empty, JokerLow, deck.Spades))
	assert.NoError(t, ValidateJokerPlay(table, JokerTop, deck.NoSuit))
	assert.NoError(t, ValidateJokerPlay(table, JokerBottom, deck.NoSuit))

	err := ValidateJokerPlay(empty, JokerHigh, deck.NoSuit)
	assert.Equal(t, CodeJokerSuitRequired, ruleCode(t, err))

	err = ValidateJokerPlay(empty, JokerTop, deck.NoSuit)
	assert.Equal(t, CodeJokerOptionInvalid, ruleCode(t, err))

	err = ValidateJokerPlay(table, JokerHigh, deck.Hearts)
	assert.Equal(t, CodeJokerOptionInvalid, ruleCode(t, err))

	err = ValidateJokerPlay(table, JokerTop, deck.Hearts)
	assert.Equal(t, CodeJokerOptionInvalid, ruleCode(t, err))

	err = ValidateJokerPlay(empty, "", deck.NoSuit)
	assert.Equal(t, CodeJokerOptionRequired, ruleCode(t, err))
}

func TestValidCards(t *testing.T) {
	joker := deck.Joker(1)
	hand := []deck.Card{
		deck.Standard(deck.Hearts, deck.Seven),
		deck.Standard(deck.Hearts, deck.Ace),
		deck.Standard(deck.Spades, deck.King),
		joker,
	}
	table := []TableCard{tc(deck.Hearts, deck.Ten, "p1")}

	valid := ValidCards(hand, table, deck.NoSuit)
	require.Len(t, valid, 3)
	ids := []string{valid[0].ID, valid[1].ID, valid[2].ID}
	assert.Contains(t, ids, "hearts-7")
	assert.Contains(t, ids, "hearts-14")
	assert.Contains(t, ids, "joker-1")
}

func intp(v int) *int { return &v }

func TestValidateBetRange(t *testing.T) {
	bets := make([]*int, 4)

	err := ValidateBet(bets, -1, 5, 0, 3)
	assert.Equal(t, CodeBetNegative, ruleCode(t, err))

	err = ValidateBet(bets, 6, 5, 0, 3)
	assert.Equal(t, CodeBetTooHigh, ruleCode(t, err))

	assert.NoError(t, ValidateBet(bets, 0, 5, 0, 3))
	assert.NoError(t, ValidateBet(bets, 5, 5, 0, 3))
}

func TestValidateBetForbiddenForDealer(t *testing.T) {
	bets := []*int{intp(2), intp(1), intp(1), nil}

	err := ValidateBet(bets, 1, 5, 3, 3)
	assert.Equal(t, CodeForbiddenBet, ruleCode(t, err))

	assert.NoError(t, ValidateBet(bets, 2, 5, 3, 3))
	assert.NoError(t, ValidateBet(bets, 0, 5, 3, 3))
}

func TestValidateBetForbiddenOnlyAppliesToDealer(t *testing.T) {
	bets := []*int{intp(2), intp(1), nil, nil}
	assert.NoError(t, ValidateBet(bets, 2, 5, 2, 3))
}

func TestForbiddenBetOutOfRange(t *testing.T) {
	bets := []*int{intp(3), intp(3), intp(3), nil}
	_, ok := ForbiddenBet(bets, 5)
	assert.False(t, ok, "forbidden value below zero should not bind")

	// Every bet is legal for the dealer then.
	for bet := 0; bet <= 5; bet++ {
		assert.NoError(t, ValidateBet(bets, bet, 5, 3, 3))
	}
}

func TestValidBets(t *testing.T) {
	bets := []*int{intp(2), intp(1), intp(1), nil}
	assert.Equal(t, []int{0, 2, 3, 4, 5}, ValidBets(bets, 5, 3, 3))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, ValidBets(bets, 5, 1, 3))
}
