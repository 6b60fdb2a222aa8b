package game

import "jokerd/internal/deck"

// HandContains reports whether the hand holds a card with the given id.
func HandContains(hand []deck.Card, cardID string) (deck.Card, bool) {
	for _, c := range hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return deck.Card{}, false
}

func handHasSuit(hand []deck.Card, suit deck.Suit) bool {
	for _, c := range hand {
		if !c.IsJoker() && c.Suit == suit {
			return true
		}
	}
	return false
}

func highestInHand(hand []deck.Card, suit deck.Suit) (deck.Card, bool) {
	var best deck.Card
	found := false
	for _, c := range hand {
		if c.IsJoker() || c.Suit != suit {
			continue
		}
		if !found || c.Rank > best.Rank {
			best = c
			found = true
		}
	}
	return best, found
}

// ValidateMove checks whether a card is legal against the table. The card
// must already be known to be in hand; jokers are always legal (their
// declared option is checked separately by ValidateJokerPlay).
func ValidateMove(hand []deck.Card, card deck.Card, table []TableCard, trump deck.Suit) error {
	if card.IsJoker() {
		return nil
	}
	if len(table) == 0 {
		return nil
	}

	lead := table[0]
	if lead.Card.IsJoker() && lead.JokerOption == JokerHigh && lead.RequestedSuit != deck.NoSuit {
		return validateJokerHighResponse(hand, card, lead.RequestedSuit, trump)
	}

	leadSuit := LeadSuit(lead)
	if leadSuit != deck.NoSuit && handHasSuit(hand, leadSuit) {
		if card.Suit != leadSuit {
			return NewRuleError(CodeMustFollowSuit, "must follow %s", leadSuit)
		}
		return nil
	}

	if trump != deck.NoSuit && handHasSuit(hand, trump) {
		if card.Suit != trump {
			return NewRuleError(CodeMustPlayTrump, "must play trump (%s)", trump)
		}
	}
	return nil
}

// validateJokerHighResponse enforces the Joker-High answer rule: play the
// highest card of the requested suit if held, else trump if held, else
// anything.
func validateJokerHighResponse(hand []deck.Card, card deck.Card, requested, trump deck.Suit) error {
	if highest, ok := highestInHand(hand, requested); ok {
		if card.ID != highest.ID {
			return NewRuleError(CodeMustPlayHighest, "must play highest %s (%s)", requested, highest)
		}
		return nil
	}
	if trump != deck.NoSuit && handHasSuit(hand, trump) {
		if card.Suit != trump {
			return NewRuleError(CodeMustPlayTrump, "must play trump (%s)", trump)
		}
	}
	return nil
}

// ValidateJokerPlay checks a joker's declared option against its position
// in the trick: High/Low plus a requested suit on the lead, Top/Bottom
// with no suit otherwise.
func ValidateJokerPlay(table []TableCard, option JokerOption, requested deck.Suit) error {
	leading := len(table) == 0

	switch option {
	case JokerHigh, JokerLow:
		if !leading {
			return NewRuleError(CodeJokerOptionInvalid, "joker in response must be top or bottom")
		}
		if !requested.Valid() {
			return NewRuleError(CodeJokerSuitRequired, "joker %s requires a suit", option)
		}
		return nil
	case JokerTop, JokerBottom:
		if leading {
			return NewRuleError(CodeJokerOptionInvalid, "leading joker must be high or low")
		}
		if requested != deck.NoSuit {
			return NewRuleError(CodeJokerOptionInvalid, "joker %s takes no suit", option)
		}
		return nil
	case "":
		return NewRuleError(CodeJokerOptionRequired, "joker requires an option")
	default:
		return NewRuleError(CodeJokerOptionInvalid, "unknown joker option %q", option)
	}
}

// ValidCards returns the subset of the hand that ValidateMove accepts.
func ValidCards(hand []deck.Card, table []TableCard, trump deck.Suit) []deck.Card {
	valid := make([]deck.Card, 0, len(hand))
	for _, c := range hand {
		if ValidateMove(hand, c, table, trump) == nil {
			valid = append(valid, c)
		}
	}
	return valid
}

// ValidateBet checks a bet against the range and forced-bet rules.
// currentBets holds each seat's bet or nil; the dealer, betting last, may
// not name the value that would make the bets sum to the round length.
func ValidateBet(currentBets []*int, bet, roundLength, playerIndex, dealerIndex int) error {
	if bet < 0 {
		return NewRuleError(CodeBetNegative, "bet cannot be negative")
	}
	if bet > roundLength {
		return NewRuleError(CodeBetTooHigh, "bet cannot exceed %d", roundLength)
	}

	if playerIndex == dealerIndex {
		if forbidden, ok := ForbiddenBet(currentBets, roundLength); ok && bet == forbidden {
			return NewRuleError(CodeForbiddenBet, "cannot bet %d, bets would sum to round length", forbidden)
		}
	}
	return nil
}

// ForbiddenBet computes the dealer's forbidden value, roundLength minus
// the sum of the placed bets. The second return is false when the value
// falls outside [0, roundLength] and no bet is forbidden.
func ForbiddenBet(currentBets []*int, roundLength int) (int, bool) {
	sum := 0
	for _, b := range currentBets {
		if b != nil {
			sum += *b
		}
	}
	forbidden := roundLength - sum
	if forbidden < 0 || forbidden > roundLength {
		return 0, false
	}
	return forbidden, true
}

// ValidBets returns every bet value a seat may legally place.
func ValidBets(currentBets []*int, roundLength, playerIndex, dealerIndex int) []int {
	bets := make([]int, 0, roundLength+1)
	for bet := 0; bet <= roundLength; bet++ {
		if ValidateBet(currentBets, bet, roundLength, playerIndex, dealerIndex) == nil {
			bets = append(bets, bet)
		}
	}
	return bets
}
