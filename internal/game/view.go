package game

// View is a read-only snapshot of a session for the presentation layer
type View struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Round       int     `json:"round"`
	Player      []Card  `json:"player"`
	Dealer      []Card  `json:"dealer"`
	PlayerTotal int     `json:"playerTotal"`
	DealerTotal int     `json:"dealerTotal"`
	Turn        Turn    `json:"turn,omitempty"`
	Outcome     Outcome `json:"outcome"`
	Balance     int     `json:"balance"`
	Bet         int     `json:"bet"`
	GameOver    bool    `json:"gameOver"`
}

// CurrentView returns the state of the session. While it is the player's
// turn only the dealer's first card is shown and counted.
func (s *Session) CurrentView() View {
	v := View{
		ID:      s.ID,
		Name:    s.name,
		Round:   s.rounds,
		Player:  []Card{},
		Dealer:  []Card{},
		Outcome: None,
		Balance: s.bankroll.Balance(),
		Bet:     s.bankroll.Bet(),
	}

	if s.round != nil {
		v.Turn = s.round.Turn()
		v.Outcome = s.round.Outcome()
		v.Player = s.round.Player().Cards
		v.PlayerTotal = s.round.PlayerTotal()

		dealer := s.round.Dealer().Cards
		if v.Turn == PlayerTurn {
			for i := 1; i < len(dealer); i++ {
				dealer[i] = dealer[i].hidden()
			}
			v.DealerTotal = Score(dealer[:1])
		} else {
			v.DealerTotal = s.round.DealerTotal()
		}
		v.Dealer = dealer
	}

	roundOver := s.round == nil || s.round.Turn() == Resolved
	v.GameOver = s.name != "" && roundOver && v.Balance <= 0

	return v
}
