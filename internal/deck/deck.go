package deck

import rand "math/rand/v2"

// DeckSize is the fixed size of a Joker deck: 34 standard cards (the four
// suits 6..Ace minus the two black sixes) plus 2 jokers.
const DeckSize = 36

// New builds the fixed 36-card Joker deck in a deterministic order.
func New() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Six; rank <= Ace; rank++ {
			// The black sixes are not part of the deck.
			if rank == Six && (suit == Clubs || suit == Spades) {
				continue
			}
			cards = append(cards, Standard(suit, rank))
		}
	}
	cards = append(cards, Joker(1), Joker(2))
	return cards
}

// Shuffle returns a Fisher-Yates shuffled copy. The input is never mutated.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Deal distributes perPlayer cards round-robin to players hands and returns
// the hands plus the undealt remainder. The input deck is not mutated.
func Deal(cards []Card, players, perPlayer int) (hands [][]Card, rest []Card) {
	hands = make([][]Card, players)
	for i := range hands {
		hands[i] = make([]Card, 0, perPlayer)
	}

	idx := 0
	for i := 0; i < perPlayer; i++ {
		for p := 0; p < players; p++ {
			if idx >= len(cards) {
				return hands, nil
			}
			hands[p] = append(hands[p], cards[idx])
			idx++
		}
	}
	return hands, cards[idx:]
}

// DrawTrump inspects the top undealt card. A joker on top means no trump,
// but the card itself is still returned for display. A nil card means the
// deck was fully dealt.
func DrawTrump(rest []Card) (Suit, *Card) {
	if len(rest) == 0 {
		return NoSuit, nil
	}
	top := rest[0]
	if top.IsJoker() {
		return NoSuit, &top
	}
	return top.Suit, &top
}

// Tuzovanie deals single cards round-robin from a fresh shuffled deck until
// an Ace appears; the receiving seat becomes the first dealer. The dealt
// piles are returned for the client-side reveal animation.
func Tuzovanie(rng *rand.Rand, players int) (dealerIndex int, dealt [][]Card) {
	cards := Shuffle(New(), rng)
	dealt = make([][]Card, players)
	for i := range dealt {
		dealt[i] = []Card{}
	}

	seat := 0
	for _, card := range cards {
		dealt[seat] = append(dealt[seat], card)
		if card.IsAce() {
			return seat, dealt
		}
		seat = (seat + 1) % players
	}
	// Unreachable: the deck always holds four aces.
	return 0, dealt
}
