package game

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const DefaultStartingBalance = 500

// Session is one player's play across rounds. It owns the deck and round
// of the current round and the bankroll that carries over between rounds.
// A Session is not safe for concurrent use.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	name            string
	startingBalance int
	bankroll        *Bankroll
	round           *Round
	rounds          int
	rng             *rand.Rand
	newDeck         func() *Deck
}

// Result describes a round that has just been settled
type Result struct {
	Round       int     `json:"round"`
	Outcome     Outcome `json:"outcome"`
	Bet         int     `json:"bet"`
	Delta       int     `json:"delta"`
	Balance     int     `json:"balance"`
	PlayerTotal int     `json:"playerTotal"`
	DealerTotal int     `json:"dealerTotal"`
}

type Option func(*Session)

func WithStartingBalance(balance int) Option {
	return func(s *Session) {
		s.startingBalance = balance
	}
}

// WithRand sets the random source used to shuffle each new deck
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// WithDeckSource replaces the shuffled deck built for every round
func WithDeckSource(source func() *Deck) Option {
	return func(s *Session) {
		s.newDeck = source
	}
}

// NewSession creates a session with no registered player
func NewSession(opts ...Option) *Session {
	now := time.Now()
	s := &Session{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
		startingBalance: DefaultStartingBalance,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newDeck == nil {
		if s.rng == nil {
			s.rng = rand.New(rand.NewSource(NewSeed()))
		}
		s.newDeck = func() *Deck {
			return NewShuffledDeck(s.rng)
		}
	}
	s.bankroll = NewBankroll(0)

	return s
}

// RegisterPlayer sets the display name and gives the player the starting
// balance.
func (s *Session) RegisterPlayer(name string) error {
	name = capitalize(strings.TrimSpace(name))
	if name == "" {
		return ValidationError{Field: "name", Msg: "name is required"}
	}

	s.name = name
	s.bankroll = NewBankroll(s.startingBalance)
	s.round = nil
	s.rounds = 0
	s.touch()
	return nil
}

// StartRound places the bet, shuffles a fresh deck and deals. The returned
// Result is non-nil when the deal ends the round at once.
func (s *Session) StartRound(bet int) (*Result, error) {
	if s.name == "" {
		return nil, ValidationError{Field: "name", Msg: "player is not registered"}
	}
	if s.round != nil && s.round.Turn() != Resolved {
		return nil, InvalidTransitionError{Op: "start round", Turn: s.round.Turn()}
	}
	if s.bankroll.Balance() <= 0 {
		return nil, InvalidBetError{Amount: bet, Balance: s.bankroll.Balance()}
	}
	if err := s.bankroll.CheckBet(bet); err != nil {
		return nil, err
	}

	round, err := NewRound(s.newDeck())
	if err != nil {
		return nil, err
	}
	if err := s.bankroll.PlaceBet(bet); err != nil {
		return nil, err
	}

	s.round = round
	s.rounds++
	s.touch()
	return s.settle()
}

func (s *Session) PlayerHit() (*Result, error) {
	if err := s.requireRound("player hit"); err != nil {
		return nil, err
	}
	if err := s.round.PlayerHit(); err != nil {
		return nil, err
	}
	s.touch()
	return s.settle()
}

func (s *Session) PlayerStand() (*Result, error) {
	if err := s.requireRound("player stand"); err != nil {
		return nil, err
	}
	if err := s.round.PlayerStand(); err != nil {
		return nil, err
	}
	s.touch()
	return s.settle()
}

func (s *Session) DealerHit() (*Result, error) {
	if err := s.requireRound("dealer hit"); err != nil {
		return nil, err
	}
	if err := s.round.DealerHit(); err != nil {
		return nil, err
	}
	s.touch()
	return s.settle()
}

// DealerAutoplay draws for the dealer until the round is resolved
func (s *Session) DealerAutoplay() (*Result, error) {
	if err := s.requireRound("dealer autoplay"); err != nil {
		return nil, err
	}
	if s.round.Turn() != DealerTurn {
		return nil, InvalidTransitionError{Op: "dealer autoplay", Turn: s.round.Turn()}
	}

	for s.round.Turn() == DealerTurn && s.round.DealerTotal() < DealerMinValue {
		if err := s.round.DealerHit(); err != nil {
			return nil, err
		}
	}
	s.touch()
	return s.settle()
}

// settle pays out a resolved round exactly once
func (s *Session) settle() (*Result, error) {
	if s.round.Turn() != Resolved || s.bankroll.Settled() {
		return nil, nil
	}

	delta, err := s.bankroll.Settle(s.round.Outcome())
	if err != nil {
		return nil, err
	}

	return &Result{
		Round:       s.rounds,
		Outcome:     s.round.Outcome(),
		Bet:         s.bankroll.Bet(),
		Delta:       delta,
		Balance:     s.bankroll.Balance(),
		PlayerTotal: s.round.PlayerTotal(),
		DealerTotal: s.round.DealerTotal(),
	}, nil
}

func (s *Session) requireRound(op string) error {
	if s.round == nil {
		return InvalidTransitionError{Op: op, Reason: "no round in progress"}
	}
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) Balance() int {
	return s.bankroll.Balance()
}

// Rounds returns the number of rounds started since registration
func (s *Session) Rounds() int {
	return s.rounds
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}
