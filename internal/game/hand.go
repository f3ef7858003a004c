package game

const (
	BlackjackValue = 21
	DealerMinValue = 17
)

type Party string

const (
	Player Party = "player"
	Dealer Party = "dealer"
)

// Hand is the ordered list of cards dealt to one party in a round
type Hand struct {
	Owner Party  `json:"owner"`
	Cards []Card `json:"cards"`
}

func newHand(owner Party) *Hand {
	return &Hand{Owner: owner, Cards: []Card{}}
}

func (h *Hand) add(c Card) {
	h.Cards = append(h.Cards, c)
}

// Total returns the blackjack total of the hand
func (h *Hand) Total() int {
	return Score(h.Cards)
}

// Score calculates the total of a set of cards. Aces count 11 and are
// downgraded to 1 one at a time while the total is over 21.
func Score(cards []Card) int {
	score := 0
	aces := 0

	for _, card := range cards {
		if card.Rank == Ace {
			aces++
		}
		score += card.Value()
	}

	for aces > 0 && score > BlackjackValue {
		score -= 10
		aces--
	}

	return score
}

// IsSoft reports whether at least one Ace in cards is still counted as 11
func IsSoft(cards []Card) bool {
	hard := 0
	aces := 0
	for _, card := range cards {
		if card.Rank == Ace {
			aces++
			hard++
			continue
		}
		hard += card.Value()
	}
	return aces > 0 && hard+10 <= BlackjackValue
}

// IsBlackjack reports whether cards is a two-card 21
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && Score(cards) == BlackjackValue
}

// IsBust reports whether cards total more than 21
func IsBust(cards []Card) bool {
	return Score(cards) > BlackjackValue
}
