package game

// Seats is the fixed table size.
const Seats = 4

// Pulka structure: round lengths per pulka. The full game is 24 rounds in
// 4 pulkas (1-8, four nines, 8-1, four nines).
var pulkaRounds = [4][]int{
	{1, 2, 3, 4, 5, 6, 7, 8},
	{9, 9, 9, 9},
	{8, 7, 6, 5, 4, 3, 2, 1},
	{9, 9, 9, 9},
}

// TotalRounds is the number of rounds in a full game.
const TotalRounds = 24

// TotalPulkas is the number of pulkas in a full game.
const TotalPulkas = 4

// Scoring constants.
const (
	ShtangaPenalty = -200 // bet >= 1, took zero
	PassBonus      = 50   // bet 0, took 0
	TookAllPerCard = 100  // bet == tricks == round length
	TookOwnPerBet  = 50   // bet == tricks, plus the flat TookOwnBonus
	TookOwnBonus   = 50
	MissPerTrick   = 10 // missed contract, 10 per trick actually taken
)

// Trump selection constants.
const (
	TrumpSelectionRound = 9 // cards-per-player that triggers chooser selection
	VisibleCount        = 3 // cards the chooser sees before deciding
	MaxRedeals          = 2
)

// CardsForRound returns the cards-per-player for a 1-based round number.
func CardsForRound(round int) int {
	r := round - 1
	for _, lengths := range pulkaRounds {
		if r < len(lengths) {
			return lengths[r]
		}
		r -= len(lengths)
	}
	return 0
}

// PulkaForRound returns the 1-based pulka number for a 1-based round number.
func PulkaForRound(round int) int {
	r := round - 1
	for i, lengths := range pulkaRounds {
		if r < len(lengths) {
			return i + 1
		}
		r -= len(lengths)
	}
	return TotalPulkas
}

// IsLastRoundOfPulka reports whether the round is its pulka's final round.
func IsLastRoundOfPulka(round int) bool {
	if round >= TotalRounds {
		return true
	}
	return PulkaForRound(round) != PulkaForRound(round+1)
}

// RoundsInPulka returns the 1-based round numbers belonging to a pulka.
func RoundsInPulka(pulka int) []int {
	start := 1
	for i := 1; i < pulka; i++ {
		start += len(pulkaRounds[i-1])
	}
	rounds := make([]int, len(pulkaRounds[pulka-1]))
	for i := range rounds {
		rounds[i] = start + i
	}
	return rounds
}
