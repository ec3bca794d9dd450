package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu    sync.Mutex
	state *State
}

// Store keeps sessions in memory keyed by a random id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
}

// NewStore creates a store whose sessions expire ttl after their last
// update. A non-positive ttl keeps sessions forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

func (s *Store) Create() (string, *State) {
	id := uuid.NewString()
	st := New()

	s.mu.Lock()
	s.sessions[id] = &entry{state: st}
	s.mu.Unlock()

	return id, st
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	return e, ok
}

// Do runs fn with exclusive access to the session's state.
func (s *Store) Do(id string, fn func(*State) error) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(e.state)
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were dropped. Sessions busy inside Do are left alone.
func (s *Store) Sweep(at time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		expired := at.Sub(e.state.UpdatedAt) > s.ttl
		e.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}
