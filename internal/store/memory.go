package store

import (
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/pkg/errors"
)

// Entry holds one session. Callers lock the entry around every use of the
// session so that requests for the same session run one at a time.
type Entry struct {
	sync.Mutex
	Session *game.Session
}

// MemoryStore is an in-memory implementation of session storage
type MemoryStore struct {
	sessions map[string]*Entry
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Entry),
	}
}

// SaveSession saves a session to the store
func (s *MemoryStore) SaveSession(sess *game.Session) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return nil, errors.Errorf("session %s already exists", sess.ID)
	}

	entry := &Entry{Session: sess}
	s.sessions[sess.ID] = entry
	return entry, nil
}

// GetSession retrieves a session by ID
func (s *MemoryStore) GetSession(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}

	return entry, nil
}

// DeleteSession removes a session from the store
func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return ErrNotFound
	}

	delete(s.sessions, id)
	return nil
}

// PruneIdle removes sessions idle since before. Sessions busy with a
// request are kept.
func (s *MemoryStore) PruneIdle(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if !entry.TryLock() {
			continue
		}
		idle := entry.Session.UpdatedAt.Before(before)
		entry.Unlock()

		if idle {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of sessions in the store
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
