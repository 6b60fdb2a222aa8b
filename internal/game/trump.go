package game

import "jokerd/internal/deck"

// freshDeal shuffles a new deck and deals the round.
func (e *Engine) freshDeal(cardsPerPlayer int) (hands [][]deck.Card, rest []deck.Card) {
	shuffled := deck.Shuffle(deck.New(), e.rng)
	return deck.Deal(shuffled, Seats, cardsPerPlayer)
}

func countJokers(hand []deck.Card) int {
	n := 0
	for _, c := range hand {
		if c.IsJoker() {
			n++
		}
	}
	return n
}

// setupTrumpSelection performs the partial deal for a 9-card round: the
// chooser (the seat after the dealer) sees only the first few cards,
// everyone else gets nothing yet, and the withheld cards wait in Pending.
func (e *Engine) setupTrumpSelection(s *State) {
	hands, _ := e.freshDeal(s.CardsPerPlayer)
	chooser := nextSeat(s.DealerIndex)

	pending := make([][]deck.Card, len(s.Players))
	for i := range s.Players {
		s.Players[i].Bet = nil
		s.Players[i].Tricks = 0
		if i == chooser {
			s.Players[i].Hand = hands[i][:VisibleCount]
			pending[i] = hands[i][VisibleCount:]
		} else {
			s.Players[i].Hand = []deck.Card{}
			pending[i] = hands[i]
		}
	}

	s.TrumpSelection = &TrumpSelection{
		ChooserID:    s.Players[chooser].ID,
		ChooserSeat:  chooser,
		VisibleCount: VisibleCount,
		MaxRedeals:   MaxRedeals,
		Pending:      pending,
	}
	s.Trump = deck.NoSuit
	s.TrumpCard = nil
	s.Phase = PhaseTrumpSelection
	s.CurrentIndex = chooser
	s.Table = []TableCard{}
}

// SelectTrump applies the chooser's decision. A suit or no-trump decision
// releases every seat's pending cards and moves the game to betting; a
// redeal reshuffles from scratch under the same partial-visibility rule.
func (e *Engine) SelectTrump(s State, playerID string, decision TrumpDecision) (State, error) {
	if s.Phase != PhaseTrumpSelection {
		return s, NewRuleError(CodeWrongPhase, "not in trump selection phase")
	}
	ts := s.TrumpSelection
	if ts == nil || ts.ChooserID != playerID {
		return s, NewRuleError(CodeNotChooser, "only the chooser can select trump")
	}

	switch decision.Kind {
	case DecideRedeal:
		if !ts.RedealAllowed() {
			return s, NewRuleError(CodeRedealNotAllowed, "maximum of %d redeals reached", ts.MaxRedeals)
		}
		return e.redeal(s), nil
	case DecideSuit:
		if !decision.Suit.Valid() {
			return s, NewRuleError(CodeJokerSuitRequired, "trump decision requires a suit")
		}
	case DecideNoTrump:
	default:
		return s, NewRuleError(CodeJokerOptionInvalid, "unknown trump decision %q", decision.Kind)
	}

	next := s.clone()
	if decision.Kind == DecideSuit {
		next.Trump = decision.Suit
	} else {
		next.Trump = deck.NoSuit
	}

	// Release the withheld cards; joker counts are recorded against the
	// full hands.
	for i := range next.Players {
		p := &next.Players[i]
		p.Hand = append(p.Hand, next.TrumpSelection.Pending[i]...)
		p.JokerCounts = append(p.JokerCounts, countJokers(p.Hand))
	}

	next.TrumpSelection = nil
	next.Phase = PhaseBetting
	next.CurrentIndex = nextSeat(next.DealerIndex)
	return next, nil
}

// redeal reshuffles and re-deals the partial hands, bumping the redeal
// counter but keeping the same chooser.
func (e *Engine) redeal(s State) State {
	next := s.clone()
	ts := next.TrumpSelection
	chooser := ts.ChooserSeat

	hands, _ := e.freshDeal(next.CardsPerPlayer)
	pending := make([][]deck.Card, len(next.Players))
	for i := range next.Players {
		if i == chooser {
			next.Players[i].Hand = hands[i][:ts.VisibleCount]
			pending[i] = hands[i][ts.VisibleCount:]
		} else {
			next.Players[i].Hand = []deck.Card{}
			pending[i] = hands[i]
		}
	}
	ts.RedealCount++
	ts.Pending = pending
	return next
}
