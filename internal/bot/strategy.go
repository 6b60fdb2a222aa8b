// Package bot provides the in-process strategies that stand in for
// disconnected or absent players. Bots act through the same engine
// transitions as humans; nothing here touches state directly.
package bot

import (
	rand "math/rand/v2"

	"jokerd/internal/deck"
	"jokerd/internal/game"
)

// Move is a bot's card decision.
type Move struct {
	CardID        string
	JokerOption   game.JokerOption
	RequestedSuit deck.Suit
}

// Strategy produces legal decisions for a seat. The zero strategy is not
// usable; construct with New.
type Strategy struct {
	rng *rand.Rand
}

// New builds a strategy around the given RNG.
func New(rng *rand.Rand) *Strategy {
	return &Strategy{rng: rng}
}

// MakeBet estimates tricks from strong cards: a joker is a guaranteed
// trick, trump figures count 0.8, kings and aces 0.5. The estimate is
// nudged off the dealer's forbidden value when it lands on it.
func (s *Strategy) MakeBet(state *game.State, playerID string) int {
	idx := state.PlayerIndex(playerID)
	if idx < 0 {
		return 0
	}
	player := &state.Players[idx]

	strong := 0.0
	for _, c := range player.Hand {
		switch {
		case c.IsJoker():
			strong += 1
		case state.Trump != deck.NoSuit && c.Suit == state.Trump && c.Rank >= deck.Jack:
			strong += 0.8
		case c.Rank >= deck.King:
			strong += 0.5
		}
	}
	bet := int(strong)

	currentBets := make([]*int, len(state.Players))
	for i := range state.Players {
		currentBets[i] = state.Players[i].Bet
	}
	if game.ValidateBet(currentBets, bet, state.CardsPerPlayer, idx, state.DealerIndex) != nil {
		if bet > 0 {
			bet--
		} else {
			bet++
		}
	}
	if bet < 0 {
		bet = 0
	}
	return bet
}

// MakeMove picks a random legal card. A joker led declares High or Low
// with a random suit; a joker in response goes Top while the bot still
// needs tricks for its bet, Bottom otherwise.
func (s *Strategy) MakeMove(state *game.State, playerID string) Move {
	idx := state.PlayerIndex(playerID)
	if idx < 0 {
		return Move{}
	}
	player := &state.Players[idx]

	valid := game.ValidCards(player.Hand, state.Table, state.Trump)
	if len(valid) == 0 {
		return Move{}
	}
	card := valid[s.rng.IntN(len(valid))]

	move := Move{CardID: card.ID}
	if card.IsJoker() {
		if len(state.Table) == 0 {
			if s.rng.IntN(2) == 0 {
				move.JokerOption = game.JokerHigh
			} else {
				move.JokerOption = game.JokerLow
			}
			move.RequestedSuit = deck.Suits[s.rng.IntN(len(deck.Suits))]
		} else {
			bet := 0
			if player.Bet != nil {
				bet = *player.Bet
			}
			if bet-player.Tricks > 0 {
				move.JokerOption = game.JokerTop
			} else {
				move.JokerOption = game.JokerBottom
			}
		}
	}
	return move
}

// SelectTrump weighs the chooser's visible cards per suit (ace 3, king 2,
// queen 1.5, jack 1, ten 0.8, rest 0.3; joker 2 to the whole hand) and
// picks the strongest suit, redeals on a very weak hand while allowed,
// and otherwise leans on no-trump when holding a joker.
func (s *Strategy) SelectTrump(state *game.State, playerID string) game.TrumpDecision {
	idx := state.PlayerIndex(playerID)
	ts := state.TrumpSelection
	if idx < 0 || ts == nil {
		return game.TrumpDecision{Kind: game.DecideNoTrump}
	}

	strength := map[deck.Suit]float64{}
	total := 0.0
	hasJoker := false
	for _, c := range state.Players[idx].Hand {
		if c.IsJoker() {
			hasJoker = true
			total += 2
			continue
		}
		weight := 0.3
		switch c.Rank {
		case deck.Ace:
			weight = 3
		case deck.King:
			weight = 2
		case deck.Queen:
			weight = 1.5
		case deck.Jack:
			weight = 1
		case deck.Ten:
			weight = 0.8
		}
		strength[c.Suit] += weight
		total += weight
	}

	bestSuit, bestScore := deck.Hearts, 0.0
	for _, suit := range deck.Suits {
		if strength[suit] > bestScore {
			bestScore = strength[suit]
			bestSuit = suit
		}
	}

	const (
		strongThreshold = 2.5
		weakThreshold   = 1.0
	)

	if bestScore >= strongThreshold {
		return game.TrumpDecision{Kind: game.DecideSuit, Suit: bestSuit}
	}
	if total < weakThreshold && ts.RedealAllowed() && s.rng.IntN(2) == 0 {
		return game.TrumpDecision{Kind: game.DecideRedeal}
	}
	if hasJoker && s.rng.IntN(10) < 3 {
		return game.TrumpDecision{Kind: game.DecideNoTrump}
	}
	if bestScore > 0 {
		return game.TrumpDecision{Kind: game.DecideSuit, Suit: bestSuit}
	}
	return game.TrumpDecision{Kind: game.DecideNoTrump}
}
