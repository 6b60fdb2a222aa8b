package deck

import "fmt"

// Suit represents a card suit. The empty string means "no suit", which the
// game layer uses for "no trump".
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"

	// NoSuit is the zero value, used where a suit is optional.
	NoSuit Suit = ""
)

// Suits lists the four suits in dealing order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Symbol returns the single-character suit symbol for display.
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds).
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// Rank represents a card rank. The Joker deck runs 6 through Ace.
type Rank int

const (
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// String returns the string representation of a rank.
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// CardType discriminates standard cards from jokers.
type CardType string

const (
	TypeStandard CardType = "standard"
	TypeJoker    CardType = "joker"
)

// Card is an immutable card value identified by a stable ID. A card is
// either standard (Suit+Rank set) or a joker (JokerID 1 or 2).
type Card struct {
	ID      string   `json:"id"`
	Type    CardType `json:"type"`
	Suit    Suit     `json:"suit,omitempty"`
	Rank    Rank     `json:"rank,omitempty"`
	JokerID int      `json:"jokerId,omitempty"`
}

// Standard creates a standard card.
func Standard(suit Suit, rank Rank) Card {
	return Card{
		ID:   fmt.Sprintf("%s-%d", suit, int(rank)),
		Type: TypeStandard,
		Suit: suit,
		Rank: rank,
	}
}

// Joker creates one of the two jokers (id 1 or 2).
func Joker(id int) Card {
	return Card{
		ID:      fmt.Sprintf("joker-%d", id),
		Type:    TypeJoker,
		JokerID: id,
	}
}

// IsJoker returns true for either joker.
func (c Card) IsJoker() bool {
	return c.Type == TypeJoker
}

// IsAce returns true if the card is an Ace.
func (c Card) IsAce() bool {
	return c.Type == TypeStandard && c.Rank == Ace
}

// String returns a short display form (e.g. "A♠", "Joker1").
func (c Card) String() string {
	if c.IsJoker() {
		return fmt.Sprintf("Joker%d", c.JokerID)
	}
	return c.Rank.String() + c.Suit.Symbol()
}
