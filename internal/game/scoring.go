package game

import "sort"

// RoundScore is one seat's outcome for a single round.
type RoundScore struct {
	PlayerID string `json:"playerId"`
	Bet      int    `json:"bet"`
	Tricks   int    `json:"tricks"`
	Score    int    `json:"score"`
	Shtanga  bool   `json:"shtanga"`
	TookOwn  bool   `json:"tookOwn"`
	TookAll  bool   `json:"tookAll"`
}

// CalculateRoundScore scores one seat for a round of the given length.
//
//	bet >= 1, tricks == 0          -> shtanga penalty
//	bet == tricks == roundLength   -> 100 * roundLength
//	bet == tricks                  -> 50 * bet + 50 (covers the 0/0 pass)
//	otherwise                      -> 10 * tricks
func CalculateRoundScore(bet, tricks, roundLength int) RoundScore {
	rs := RoundScore{Bet: bet, Tricks: tricks}
	rs.Shtanga = bet >= 1 && tricks == 0
	rs.TookOwn = bet == tricks
	rs.TookAll = rs.TookOwn && bet == roundLength

	switch {
	case rs.Shtanga:
		rs.Score = ShtangaPenalty
	case rs.TookAll:
		rs.Score = TookAllPerCard * roundLength
	case rs.TookOwn:
		rs.Score = TookOwnPerBet*bet + TookOwnBonus
	default:
		rs.Score = MissPerTrick * tricks
	}
	return rs
}

// Spoiled reports whether a round outcome spoils the seat for the pulka.
func Spoiled(bet, tricks int) bool {
	return bet != tricks
}

// ownMaxima returns, per seat, the seat's highest positive score across
// the given rounds (the pulka's final round must already be excluded by
// the caller).
func ownMaxima(players []Player, rounds []RoundHistory) []int {
	maxima := make([]int, len(players))
	for _, round := range rounds {
		for i, p := range players {
			if score, ok := round.Scores[p.ID]; ok && score > maxima[i] {
				maxima[i] = score
			}
		}
	}
	return maxima
}

// CalculatePulkaPremiums resolves the premium chain for a completed pulka.
// clean[i] means seat i met its bet every round of the pulka. A clean seat
// receives its own pulka maximum unless its predecessor is also clean;
// independently it debits its successor by the successor's own maximum
// unless the successor is clean. Dirty seats neither receive nor debit.
// The pulka's final round never contributes to the maxima. When all four
// seats are clean nothing is received or debited.
func CalculatePulkaPremiums(players []Player, pulkaHistory []RoundHistory) PulkaRecap {
	recap := PulkaRecap{Deltas: make(map[string]int, len(players))}
	for _, p := range players {
		recap.Deltas[p.ID] = 0
	}
	if len(players) == 0 {
		return recap
	}

	var nonFinal []RoundHistory
	if len(pulkaHistory) > 0 {
		nonFinal = pulkaHistory[:len(pulkaHistory)-1]
	}
	maxima := ownMaxima(players, nonFinal)

	n := len(players)
	for i, p := range players {
		if p.Spoiled {
			continue
		}
		prev := (i - 1 + n) % n
		next := (i + 1) % n

		premium := Premium{PlayerID: p.ID}
		if players[prev].Spoiled {
			premium.Received = maxima[i]
			recap.Deltas[p.ID] += maxima[i]
		}
		if players[next].Spoiled {
			premium.TakenFromID = players[next].ID
			premium.TakenAmount = maxima[next]
			recap.Deltas[players[next].ID] -= maxima[next]
		}
		recap.Premiums = append(recap.Premiums, premium)
	}
	return recap
}

// FinalRanking is one row of the end-of-game standings.
type FinalRanking struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Score    int    `json:"totalScore"`
}

// CalculateFinalResults ranks the seats by total score; ties go to the
// earlier seat in score-sheet order.
func CalculateFinalResults(players []Player) (winnerID string, rankings []FinalRanking) {
	rankings = make([]FinalRanking, len(players))
	for i, p := range players {
		rankings[i] = FinalRanking{PlayerID: p.ID, Name: p.Name, Seat: i, Score: p.TotalScore}
	}
	sort.SliceStable(rankings, func(a, b int) bool {
		return rankings[a].Score > rankings[b].Score
	})
	if len(rankings) > 0 {
		winnerID = rankings[0].PlayerID
	}
	return winnerID, rankings
}
