package game

import "jokerd/internal/deck"

// DetermineTrickWinner returns the index in table of the winning play.
// The table must hold at least one card; trump may be NoSuit.
func DetermineTrickWinner(table []TableCard, trump deck.Suit) int {
	if len(table) == 0 {
		return -1
	}

	lead := table[0]
	if lead.Card.IsJoker() && (lead.JokerOption == JokerHigh || lead.JokerOption == JokerLow) {
		return jokerLedWinner(table, trump)
	}

	winner := 0
	for i := 1; i < len(table); i++ {
		if compareCards(table[winner], table[i], trump) < 0 {
			winner = i
		}
	}
	return winner
}

// jokerLedWinner resolves a trick led by a joker declared High or Low.
// A later Top joker always takes it (the last one if several). A High
// joker requesting the trump suit represents the best trump and wins.
// Otherwise the highest played trump wins; for Low the highest card of
// the requested suit; the joker itself by default.
func jokerLedWinner(table []TableCard, trump deck.Suit) int {
	lead := table[0]

	lastTop := -1
	for i, tc := range table {
		if tc.Card.IsJoker() && tc.JokerOption == JokerTop {
			lastTop = i
		}
	}
	if lastTop >= 0 {
		return lastTop
	}

	if trump != deck.NoSuit {
		if lead.JokerOption == JokerHigh && lead.RequestedSuit == trump {
			return 0
		}
		if idx := highestOfSuit(table, trump); idx >= 0 {
			return idx
		}
	}

	if lead.JokerOption == JokerLow && lead.RequestedSuit != deck.NoSuit {
		if idx := highestOfSuit(table, lead.RequestedSuit); idx >= 0 {
			return idx
		}
	}

	return 0
}

func highestOfSuit(table []TableCard, suit deck.Suit) int {
	best := -1
	bestRank := deck.Rank(0)
	for i, tc := range table {
		if tc.Card.IsJoker() || tc.Card.Suit != suit {
			continue
		}
		if tc.Card.Rank > bestRank {
			bestRank = tc.Card.Rank
			best = i
		}
	}
	return best
}

// compareCards compares the current winner (a) against a later play (b).
// Positive means a holds, negative means b takes the trick. b is always
// the later play, which is what decides the two-Tops case.
func compareCards(a, b TableCard, trump deck.Suit) int {
	aj, bj := a.Card.IsJoker(), b.Card.IsJoker()

	if aj && bj {
		if a.JokerOption == JokerTop && b.JokerOption == JokerTop {
			return -1 // later Top wins
		}
		if a.JokerOption == JokerTop {
			return 1
		}
		if b.JokerOption == JokerTop {
			return -1
		}
		return 1
	}
	if aj {
		switch a.JokerOption {
		case JokerTop:
			return 1
		case JokerBottom:
			return -1
		}
		return 1
	}
	if bj {
		switch b.JokerOption {
		case JokerTop:
			return -1
		case JokerBottom:
			return 1
		}
		return -1
	}

	if trump != deck.NoSuit {
		if a.Card.Suit == trump && b.Card.Suit != trump {
			return 1
		}
		if b.Card.Suit == trump && a.Card.Suit != trump {
			return -1
		}
		if a.Card.Suit == trump && b.Card.Suit == trump {
			return int(a.Card.Rank) - int(b.Card.Rank)
		}
	}

	if a.Card.Suit == b.Card.Suit {
		return int(a.Card.Rank) - int(b.Card.Rank)
	}

	if lead := LeadSuit(a); lead != deck.NoSuit {
		if a.Card.Suit == lead && b.Card.Suit != lead {
			return 1
		}
		if b.Card.Suit == lead && a.Card.Suit != lead {
			return -1
		}
	}
	return 1
}

// LeadSuit returns the suit a trick's lead card establishes. A joker led
// High/Low leads its requested suit; a Top/Bottom-style lead has none.
func LeadSuit(lead TableCard) deck.Suit {
	if lead.Card.IsJoker() {
		if lead.JokerOption == JokerHigh || lead.JokerOption == JokerLow {
			return lead.RequestedSuit
		}
		return deck.NoSuit
	}
	return lead.Card.Suit
}
