package game

import "fmt"

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

type InvalidBetError struct {
	Amount  int
	Balance int
}

func (e InvalidBetError) Error() string {
	if e.Balance <= 0 {
		return fmt.Sprintf("cannot bet %d: balance is exhausted", e.Amount)
	}
	return fmt.Sprintf("bet must be between 1 and %d, got %d", e.Balance, e.Amount)
}

// InvalidTransitionError is returned when an operation is not allowed in
// the current turn of the round.
type InvalidTransitionError struct {
	Op     string
	Turn   Turn
	Reason string
}

func (e InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s is not allowed: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s is not allowed during %s", e.Op, e.Turn)
}

type AlreadySettledError struct {
	Round int
}

func (e AlreadySettledError) Error() string {
	return fmt.Sprintf("round %d has already been settled", e.Round)
}

type EmptyDeckError struct{}

func (e EmptyDeckError) Error() string {
	return "deck is empty"
}
