package game

type Suit string
type Rank string

const (
	Hearts   Suit = "Hearts"
	Spades   Suit = "Spades"
	Clubs    Suit = "Clubs"
	Diamonds Suit = "Diamonds"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "Jack"
	Queen Rank = "Queen"
	King  Rank = "King"
	Ace   Rank = "Ace"
)

var (
	Suits = []Suit{Hearts, Spades, Clubs, Diamonds}
	Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Card is a single playing card. Face is false only on copies handed to
// the presentation layer for a card the player may not see yet.
type Card struct {
	Suit Suit `json:"suit,omitempty"`
	Rank Rank `json:"rank,omitempty"`
	Face bool `json:"face"`
}

// NewCard returns a face-up card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, Face: true}
}

// Value returns the blackjack value of the card, counting an Ace as 11
func (c Card) Value() int {
	switch c.Rank {
	case Ace:
		return 11
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

func (c Card) String() string {
	return string(c.Rank) + " of " + string(c.Suit)
}

// hidden returns a face-down copy that carries no suit or rank
func (Card) hidden() Card {
	return Card{Face: false}
}
