package game

type Turn string

const (
	PlayerTurn Turn = "playerTurn" // Player may hit or stand
	DealerTurn Turn = "dealerTurn" // Dealer draws until 17 or more
	Resolved   Turn = "resolved"   // Outcome is final
)

type Outcome string

const (
	None            Outcome = "none"
	PlayerBlackjack Outcome = "playerBlackjack"
	PlayerBust      Outcome = "playerBust"
	DealerBlackjack Outcome = "dealerBlackjack"
	DealerBust      Outcome = "dealerBust"
	PlayerWins      Outcome = "playerWins"
	DealerWins      Outcome = "dealerWins"
	Tie             Outcome = "tie"
)

// PlayerFavorable reports whether the outcome pays the player
func (o Outcome) PlayerFavorable() bool {
	switch o {
	case PlayerBlackjack, DealerBust, PlayerWins:
		return true
	}
	return false
}

// PlayerUnfavorable reports whether the outcome costs the player the bet
func (o Outcome) PlayerUnfavorable() bool {
	switch o {
	case PlayerBust, DealerBlackjack, DealerWins:
		return true
	}
	return false
}

// Round is the state machine of a single round:
// PlayerTurn -> DealerTurn -> Resolved. Each transition happens at most
// once and the outcome is recorded exactly once.
type Round struct {
	deck    *Deck
	player  *Hand
	dealer  *Hand
	turn    Turn
	outcome Outcome
}

// NewRound deals two cards to the player and the dealer, alternating, and
// evaluates the player's hand. A round can be Resolved right away on a
// player blackjack.
func NewRound(deck *Deck) (*Round, error) {
	r := &Round{
		deck:    deck,
		player:  newHand(Player),
		dealer:  newHand(Dealer),
		turn:    PlayerTurn,
		outcome: None,
	}

	for i := 0; i < 2; i++ {
		for _, h := range []*Hand{r.player, r.dealer} {
			card, err := deck.Draw()
			if err != nil {
				return nil, err
			}
			h.add(card)
		}
	}

	r.evaluatePlayer()
	return r, nil
}

// PlayerHit deals one more card to the player
func (r *Round) PlayerHit() error {
	if r.turn != PlayerTurn {
		return InvalidTransitionError{Op: "player hit", Turn: r.turn}
	}

	card, err := r.deck.Draw()
	if err != nil {
		return err
	}
	r.player.add(card)

	r.evaluatePlayer()
	return nil
}

// PlayerStand ends the player's turn and reveals the dealer's hand
func (r *Round) PlayerStand() error {
	if r.turn != PlayerTurn {
		return InvalidTransitionError{Op: "player stand", Turn: r.turn}
	}

	r.turn = DealerTurn
	r.evaluateDealer()
	return nil
}

// DealerHit deals one more card to the dealer
func (r *Round) DealerHit() error {
	if r.turn != DealerTurn || r.dealer.Total() >= DealerMinValue {
		return InvalidTransitionError{Op: "dealer hit", Turn: r.turn}
	}

	card, err := r.deck.Draw()
	if err != nil {
		return err
	}
	r.dealer.add(card)

	r.evaluateDealer()
	return nil
}

func (r *Round) evaluatePlayer() {
	total := r.player.Total()
	switch {
	case total == BlackjackValue:
		r.resolve(PlayerBlackjack)
	case total > BlackjackValue:
		r.resolve(PlayerBust)
	}
}

// evaluateDealer checks blackjack and bust before comparing totals
func (r *Round) evaluateDealer() {
	dealerTotal := r.dealer.Total()
	playerTotal := r.player.Total()

	switch {
	case dealerTotal == BlackjackValue:
		r.resolve(DealerBlackjack)
	case dealerTotal > BlackjackValue:
		r.resolve(DealerBust)
	case dealerTotal >= DealerMinValue:
		switch {
		case playerTotal > dealerTotal:
			r.resolve(PlayerWins)
		case dealerTotal > playerTotal:
			r.resolve(DealerWins)
		default:
			r.resolve(Tie)
		}
	}
}

func (r *Round) resolve(o Outcome) {
	r.outcome = o
	r.turn = Resolved
}

func (r *Round) Turn() Turn {
	return r.turn
}

// Outcome is None until the round is Resolved
func (r *Round) Outcome() Outcome {
	return r.outcome
}

// Player returns a copy of the player's hand
func (r *Round) Player() Hand {
	return copyHand(r.player)
}

// Dealer returns a copy of the dealer's hand
func (r *Round) Dealer() Hand {
	return copyHand(r.dealer)
}

func (r *Round) PlayerTotal() int {
	return r.player.Total()
}

func (r *Round) DealerTotal() int {
	return r.dealer.Total()
}

// CardsLeft returns the number of undealt cards
func (r *Round) CardsLeft() int {
	return r.deck.Remaining()
}

func copyHand(h *Hand) Hand {
	cards := make([]Card, len(h.Cards))
	copy(cards, h.Cards)
	return Hand{Owner: h.Owner, Cards: cards}
}
