package game

import "jokerd/internal/deck"

// dealRound shuffles a fresh deck and deals the current round into the
// state: full hands plus a drawn trump for normal rounds, a partial deal
// behind a TrumpSelection for 9-card rounds. Bets and tricks are reset.
func (e *Engine) dealRound(s *State) {
	if s.CardsPerPlayer == TrumpSelectionRound {
		e.setupTrumpSelection(s)
		return
	}

	hands, rest := e.freshDeal(s.CardsPerPlayer)
	for i := range s.Players {
		s.Players[i].Hand = hands[i]
		s.Players[i].Bet = nil
		s.Players[i].Tricks = 0
		s.Players[i].JokerCounts = append(s.Players[i].JokerCounts, countJokers(hands[i]))
	}

	trump, trumpCard := deck.DrawTrump(rest)
	s.Trump = trump
	s.TrumpCard = trumpCard
	s.TrumpSelection = nil
	s.Phase = PhaseBetting
	s.CurrentIndex = nextSeat(s.DealerIndex)
	s.Table = []TableCard{}
}

// CompleteRound scores the finished round, appends its history record and
// either advances to the next round (dealing it) or parks the game in
// PulkaComplete for premium resolution.
func (e *Engine) CompleteRound(s State) (State, error) {
	if s.Phase != PhaseRoundComplete {
		return s, NewRuleError(CodeWrongPhase, "not in round complete phase")
	}

	next := s.clone()

	entry := RoundHistory{
		Round:          next.Round,
		Pulka:          next.Pulka,
		CardsPerPlayer: next.CardsPerPlayer,
		Trump:          next.Trump,
		Bets:           make(map[string]int, len(next.Players)),
		Tricks:         make(map[string]int, len(next.Players)),
		Scores:         make(map[string]int, len(next.Players)),
		JokerCounts:    make(map[string]int, len(next.Players)),
	}

	for i := range next.Players {
		p := &next.Players[i]
		bet := 0
		if p.Bet != nil {
			bet = *p.Bet
		}
		rs := CalculateRoundScore(bet, p.Tricks, next.CardsPerPlayer)

		p.RoundScores = append(p.RoundScores, rs.Score)
		p.TotalScore += rs.Score
		if !rs.TookOwn {
			p.Spoiled = true
		}
		if rs.TookAll {
			p.TookAllInPulka = true
		}
		if bet == 0 && p.Tricks == 0 {
			p.PerfectPassInPulka = true
		}

		entry.Bets[p.ID] = bet
		entry.Tricks[p.ID] = p.Tricks
		entry.Scores[p.ID] = rs.Score
		if n := len(p.JokerCounts); n > 0 {
			entry.JokerCounts[p.ID] = p.JokerCounts[n-1]
		}
	}
	next.History = append(next.History, entry)
	next.Table = []TableCard{}

	if IsLastRoundOfPulka(next.Round) {
		next.Phase = PhasePulkaComplete
		return next, nil
	}

	next.Round++
	next.CardsPerPlayer = CardsForRound(next.Round)
	next.DealerIndex = nextSeat(next.DealerIndex)
	next.CurrentIndex = nextSeat(next.DealerIndex)
	e.dealRound(&next)
	return next, nil
}

// CompletePulka resolves the premium chain, folds the deltas into the
// totals and records the recap. The state stays in PulkaComplete until
// AdvanceAfterPulka is called after the recap delay.
func (e *Engine) CompletePulka(s State) (State, error) {
	if s.Phase != PhasePulkaComplete {
		return s, NewRuleError(CodeWrongPhase, "not in pulka complete phase")
	}

	next := s.clone()

	var pulkaHistory []RoundHistory
	for _, h := range next.History {
		if h.Pulka == next.Pulka {
			pulkaHistory = append(pulkaHistory, h)
		}
	}

	recap := CalculatePulkaPremiums(next.Players, pulkaHistory)
	recap.Pulka = next.Pulka
	for i := range next.Players {
		p := &next.Players[i]
		p.TotalScore += recap.Deltas[p.ID]
		p.PulkaScores = append(p.PulkaScores, p.TotalScore)
	}
	next.LastPulkaRecap = &recap
	return next, nil
}

// AdvanceAfterPulka moves past the recap: it either finishes the game or
// starts the next pulka with fresh achievement flags and a new deal.
func (e *Engine) AdvanceAfterPulka(s State) (State, error) {
	if s.Phase != PhasePulkaComplete {
		return s, NewRuleError(CodeWrongPhase, "not in pulka complete phase")
	}

	next := s.clone()
	if next.Round >= TotalRounds {
		next.Phase = PhaseFinished
		winnerID, _ := CalculateFinalResults(next.Players)
		next.WinnerID = winnerID
		return next, nil
	}

	next.Round++
	next.Pulka++
	next.CardsPerPlayer = CardsForRound(next.Round)
	next.DealerIndex = nextSeat(next.DealerIndex)
	next.CurrentIndex = nextSeat(next.DealerIndex)
	for i := range next.Players {
		next.Players[i].Spoiled = false
		next.Players[i].TookAllInPulka = false
		next.Players[i].PerfectPassInPulka = false
	}
	e.dealRound(&next)
	return next, nil
}
