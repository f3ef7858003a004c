package store

import (
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("session not found")

// Store defines the interface for session storage
type Store interface {
	// SaveSession adds a session to the store
	SaveSession(s *game.Session) (*Entry, error)

	// GetSession retrieves a session by ID
	GetSession(id string) (*Entry, error)

	// DeleteSession removes a session from the store
	DeleteSession(id string) error

	// PruneIdle removes sessions not updated since before
	PruneIdle(before time.Time) int

	// Count returns the number of stored sessions
	Count() int
}
