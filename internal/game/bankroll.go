package game

// Bankroll tracks the player's balance and the bet of the current round
type Bankroll struct {
	balance int
	bet     int
	round   int
	settled bool
}

func NewBankroll(balance int) *Bankroll {
	return &Bankroll{balance: balance, settled: true}
}

// PlaceBet stakes amount on the next round. The balance is only adjusted
// when the round is settled.
func (b *Bankroll) PlaceBet(amount int) error {
	if err := b.CheckBet(amount); err != nil {
		return err
	}

	b.bet = amount
	b.round++
	b.settled = false
	return nil
}

// CheckBet validates amount against the balance without placing it
func (b *Bankroll) CheckBet(amount int) error {
	if amount <= 0 || amount > b.balance {
		return InvalidBetError{Amount: amount, Balance: b.balance}
	}
	return nil
}

// Settle applies the outcome of the round to the balance and returns the
// change. It fails if the current bet was already settled.
func (b *Bankroll) Settle(o Outcome) (int, error) {
	if b.bet == 0 {
		return 0, InvalidTransitionError{Op: "settle", Reason: "no bet placed"}
	}
	if b.settled {
		return 0, AlreadySettledError{Round: b.round}
	}

	var delta int
	switch {
	case o.PlayerFavorable():
		delta = b.bet
	case o.PlayerUnfavorable():
		delta = -b.bet
	case o == Tie:
		delta = 0
	default:
		return 0, InvalidTransitionError{Op: "settle", Reason: "round is not resolved"}
	}

	b.balance += delta
	b.settled = true
	return delta, nil
}

func (b *Bankroll) Balance() int {
	return b.balance
}

// Bet returns the amount staked on the current or last round
func (b *Bankroll) Bet() int {
	return b.bet
}

func (b *Bankroll) Settled() bool {
	return b.settled
}
