package api

import (
	"fmt"

	"github.com/calvinwijaya/blackjack-web/internal/game"
)

// outcomeMessage is the line shown to the player for the state of a round
func outcomeMessage(v game.View) string {
	switch v.Outcome {
	case game.PlayerBust:
		return fmt.Sprintf("%s busted with a total of %d. You now have a balance of %d", v.Name, v.PlayerTotal, v.Balance)
	case game.PlayerBlackjack:
		return fmt.Sprintf("%s hit Blackjack and now has a balance of %d", v.Name, v.Balance)
	case game.DealerBust:
		return fmt.Sprintf("Dealer busted. %s won with a total of %d and now has a balance of %d", v.Name, v.PlayerTotal, v.Balance)
	case game.DealerBlackjack:
		return fmt.Sprintf("Dealer got Blackjack! You now have a balance of %d", v.Balance)
	case game.PlayerWins:
		return fmt.Sprintf("%s won with a total of %d and now has a balance of %d", v.Name, v.PlayerTotal, v.Balance)
	case game.DealerWins:
		return fmt.Sprintf("Dealer won with a total of %d! You now have a balance of %d", v.DealerTotal, v.Balance)
	case game.Tie:
		return fmt.Sprintf("It was a tie! Both players scored %d.", v.PlayerTotal)
	}

	switch v.Turn {
	case game.PlayerTurn:
		return fmt.Sprintf("%s has %d. Hit or stay?", v.Name, v.PlayerTotal)
	case game.DealerTurn:
		return fmt.Sprintf("Dealer has %d and must hit", v.DealerTotal)
	}

	if v.Name != "" {
		return fmt.Sprintf("Welcome %s, place a bet", v.Name)
	}
	return ""
}
