package game

import "jokerd/internal/deck"

// Badges are the per-pulka achievement markers shown on the scoresheet.
// HasJoker is visible only on the viewer's own seat.
type Badges struct {
	TookAll     bool `json:"tookAll"`
	PerfectPass bool `json:"perfectPass"`
	HasJoker    bool `json:"hasJoker,omitempty"`
}

// PlayerView is one seat as a given viewer sees it. Only the viewer's own
// hand carries cards; other hands are reduced to a count.
type PlayerView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	IsBot       bool        `json:"isBot"`
	Connected   bool        `json:"connected"`
	Hand        []deck.Card `json:"hand,omitempty"`
	HandCount   int         `json:"handCount"`
	Bet         *int        `json:"bet"`
	Tricks      int         `json:"tricks"`
	RoundScores []int       `json:"roundScores"`
	PulkaScores []int       `json:"pulkaScores"`
	TotalScore  int         `json:"totalScore"`
	Badges      Badges      `json:"badges"`
}

// StateView is the sanitized broadcast payload for one viewer.
type StateView struct {
	ID             string          `json:"id"`
	Players        []PlayerView    `json:"players"`
	DealerIndex    int             `json:"dealerIndex"`
	CurrentIndex   int             `json:"currentPlayerIndex"`
	Round          int             `json:"round"`
	Pulka          int             `json:"pulka"`
	CardsPerPlayer int             `json:"cardsPerPlayer"`
	Phase          Phase           `json:"phase"`
	Trump          deck.Suit       `json:"trump,omitempty"`
	TrumpCard      *deck.Card      `json:"trumpCard,omitempty"`
	Table          []TableCard     `json:"table"`
	TrumpSelection *TrumpSelection `json:"trumpSelection,omitempty"`
	ValidBets      []int           `json:"validBets,omitempty"`
	ValidCardIDs   []string        `json:"validCardIds,omitempty"`
	LastPulkaRecap *PulkaRecap     `json:"lastPulkaRecap,omitempty"`
	WinnerID       string          `json:"winnerId,omitempty"`
}

// ViewFor sanitizes the state for one viewer: other seats' hands are
// zeroed to a count, the joker badge stays private, and when it is the
// viewer's turn the legal bets or cards are precomputed for the client.
func (s *State) ViewFor(viewerID string) StateView {
	view := StateView{
		ID:             s.ID,
		Players:        make([]PlayerView, len(s.Players)),
		DealerIndex:    s.DealerIndex,
		CurrentIndex:   s.CurrentIndex,
		Round:          s.Round,
		Pulka:          s.Pulka,
		CardsPerPlayer: s.CardsPerPlayer,
		Phase:          s.Phase,
		Trump:          s.Trump,
		TrumpCard:      s.TrumpCard,
		Table:          s.Table,
		TrumpSelection: s.TrumpSelection,
		LastPulkaRecap: s.LastPulkaRecap,
		WinnerID:       s.WinnerID,
	}

	viewerIdx := -1
	for i := range s.Players {
		p := &s.Players[i]
		pv := PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			IsBot:       p.IsBot,
			Connected:   p.Connected,
			HandCount:   len(p.Hand),
			Bet:         p.Bet,
			Tricks:      p.Tricks,
			RoundScores: p.RoundScores,
			PulkaScores: p.PulkaScores,
			TotalScore:  p.TotalScore,
			Badges: Badges{
				TookAll:     p.TookAllInPulka,
				PerfectPass: p.PerfectPassInPulka,
			},
		}
		if p.ID == viewerID {
			viewerIdx = i
			pv.Hand = p.Hand
			pv.Badges.HasJoker = countJokers(p.Hand) > 0
		}
		view.Players[i] = pv
	}

	if viewerIdx >= 0 && viewerIdx == s.CurrentIndex {
		switch s.Phase {
		case PhaseBetting:
			bets := make([]*int, len(s.Players))
			for i := range s.Players {
				bets[i] = s.Players[i].Bet
			}
			view.ValidBets = ValidBets(bets, s.CardsPerPlayer, viewerIdx, s.DealerIndex)
		case PhasePlaying:
			for _, c := range ValidCards(s.Players[viewerIdx].Hand, s.Table, s.Trump) {
				view.ValidCardIDs = append(view.ValidCardIDs, c.ID)
			}
		}
	}
	return view
}
