package game

import (
	crypto_rand "crypto/rand"
	"math"
	"math/big"
	"math/rand"
)

// Deck is the draw pile of one round. Cards are always drawn from the top
// (index 0).
type Deck struct {
	cards []Card
}

// NewShuffledDeck creates a standard 52-card deck and shuffles it with r.
// A nil r gets a source seeded from crypto/rand.
func NewShuffledDeck(r *rand.Rand) *Deck {
	if r == nil {
		r = rand.New(rand.NewSource(NewSeed()))
	}

	deck := &Deck{cards: make([]Card, 0, len(Suits)*len(Ranks))}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck.cards = append(deck.cards, NewCard(suit, rank))
		}
	}

	// Fisher-Yates shuffle algorithm
	for i := len(deck.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck.cards[i], deck.cards[j] = deck.cards[j], deck.cards[i]
	}

	return deck
}

// NewStackedDeck creates a deck that deals cards in exactly the given order
func NewStackedDeck(cards ...Card) *Deck {
	deck := &Deck{cards: make([]Card, len(cards))}
	for i, c := range cards {
		c.Face = true
		deck.cards[i] = c
	}
	return deck
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, EmptyDeckError{}
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// NewSeed returns a seed for math/rand taken from crypto/rand.
func NewSeed() int64 {
	n, err := crypto_rand.Int(crypto_rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return n.Int64()
}
