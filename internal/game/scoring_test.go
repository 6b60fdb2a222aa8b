package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRoundScore(t *testing.T) {
	tests := []struct {
		name        string
		bet, tricks int
		roundLength int
		score       int
	}{
		{"took own", 2, 2, 9, 150},
		{"took all", 3, 3, 3, 300},
		{"shtanga", 2, 0, 9, ShtangaPenalty},
		{"pass", 0, 0, 9, 50},
		{"missed under", 3, 1, 9, 10},
		{"missed over", 1, 4, 9, 40},
		{"took all full nine", 9, 9, 9, 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := CalculateRoundScore(tt.bet, tt.tricks, tt.roundLength)
			assert.Equal(t, tt.score, rs.Score)
		})
	}
}

func TestCalculateRoundScoreFlags(t *testing.T) {
	rs := CalculateRoundScore(2, 0, 9)
	assert.True(t, rs.Shtanga)
	assert.False(t, rs.TookOwn)

	rs = CalculateRoundScore(3, 3, 3)
	assert.True(t, rs.TookAll)
	assert.True(t, rs.TookOwn)

	rs = CalculateRoundScore(0, 0, 9)
	assert.True(t, rs.TookOwn)
	assert.False(t, rs.Shtanga)
}

// premiumPlayers builds four seats with fabricated history so each seat's
// own pulka maximum matches maxima, excluding the synthetic final round.
func premiumPlayers(spoiled [4]bool, maxima [4]int) ([]Player, []RoundHistory) {
	players := make([]Player, 4)
	ids := []string{"p1", "p2", "p3", "p4"}
	for i := range players {
		players[i] = Player{ID: ids[i], Spoiled: spoiled[i]}
	}

	scores := make(map[string]int, 4)
	for i, id := range ids {
		scores[id] = maxima[i]
	}
	history := []RoundHistory{
		{Round: 1, Pulka: 1, Scores: scores},
		// Final round of the pulka: huge scores that must be ignored.
		{Round: 2, Pulka: 1, Scores: map[string]int{"p1": 9000, "p2": 9000, "p3": 9000, "p4": 9000}},
	}
	return players, history
}

func TestPulkaPremiumsThreeCleanInARow(t *testing.T) {
	players, history := premiumPlayers(
		[4]bool{false, false, false, true},
		[4]int{450, 500, 200, 50},
	)

	recap := CalculatePulkaPremiums(players, history)

	assert.Equal(t, 450, recap.Deltas["p1"])
	assert.Equal(t, 0, recap.Deltas["p2"])
	assert.Equal(t, 0, recap.Deltas["p3"])
	assert.Equal(t, -50, recap.Deltas["p4"])
	require.Len(t, recap.Premiums, 3)
}

func TestPulkaPremiumsSingleClean(t *testing.T) {
	players, history := premiumPlayers(
		[4]bool{false, true, true, true},
		[4]int{300, 120, 80, 60},
	)

	recap := CalculatePulkaPremiums(players, history)

	// p1 receives its own max and debits p2 by p2's own max.
	assert.Equal(t, 300, recap.Deltas["p1"])
	assert.Equal(t, -120, recap.Deltas["p2"])
	assert.Equal(t, 0, recap.Deltas["p3"])
	assert.Equal(t, 0, recap.Deltas["p4"])
}

func TestPulkaPremiumsAllClean(t *testing.T) {
	players, history := premiumPlayers(
		[4]bool{false, false, false, false},
		[4]int{450, 500, 200, 50},
	)

	recap := CalculatePulkaPremiums(players, history)

	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		assert.Zero(t, recap.Deltas[id], "all-clean pulka must move no points for %s", id)
	}
}

func TestPulkaPremiumsAllDirty(t *testing.T) {
	players, history := premiumPlayers(
		[4]bool{true, true, true, true},
		[4]int{450, 500, 200, 50},
	)

	recap := CalculatePulkaPremiums(players, history)

	assert.Empty(t, recap.Premiums)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		assert.Zero(t, recap.Deltas[id])
	}
}

func TestPulkaPremiumsWrapAround(t *testing.T) {
	// Only the last seat is clean: receives own max, debits the first seat.
	players, history := premiumPlayers(
		[4]bool{true, true, true, false},
		[4]int{100, 200, 300, 400},
	)

	recap := CalculatePulkaPremiums(players, history)

	assert.Equal(t, -100, recap.Deltas["p1"])
	assert.Equal(t, 400, recap.Deltas["p4"])
}

func TestPulkaPremiumsExcludeFinalRound(t *testing.T) {
	players, history := premiumPlayers(
		[4]bool{false, true, true, true},
		[4]int{300, 120, 80, 60},
	)

	// Sanity: the synthetic final round carries 9000s that must not leak
	// into the maxima.
	recap := CalculatePulkaPremiums(players, history)
	assert.Equal(t, 300, recap.Deltas["p1"])
}

func TestCalculateFinalResults(t *testing.T) {
	players := []Player{
		{ID: "p1", TotalScore: 500},
		{ID: "p2", TotalScore: 900},
		{ID: "p3", TotalScore: 900},
		{ID: "p4", TotalScore: 100},
	}

	winnerID, rankings := CalculateFinalResults(players)

	// Tie goes to the earlier seat.
	assert.Equal(t, "p2", winnerID)
	require.Len(t, rankings, 4)
	assert.Equal(t, "p2", rankings[0].PlayerID)
	assert.Equal(t, "p3", rankings[1].PlayerID)
	assert.Equal(t, "p4", rankings[3].PlayerID)
}
