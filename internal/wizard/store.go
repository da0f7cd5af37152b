package wizard

import (
	"sync"
	"time"
)

type entry struct {
	state        *State
	lastActivity time.Time
}

// Store keeps one wizard State per session ID. Access goes through
// Update so concurrent requests for the same session serialize on the
// store lock.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

// Get returns a snapshot of the session's state, creating it on first
// use.
func (s *Store) Get(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(sessionID)
	return snapshot(e.state)
}

// Update applies fn to the session's state and returns the resulting
// snapshot.
func (s *Store) Update(sessionID string, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(sessionID)
	if fn != nil {
		fn(e.state)
	}
	e.lastActivity = time.Now()
	return snapshot(e.state)
}

// Reset clears the session fully and returns to the upload stage.
// Invoked after a successful final confirmation or a user restart.
func (s *Store) Reset(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = &entry{state: newState(), lastActivity: time.Now()}
	return snapshot(s.sessions[sessionID].state)
}

// Evict drops sessions idle longer than the TTL and reports how many
// were removed.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if e.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) getOrCreateLocked(sessionID string) *entry {
	if e, ok := s.sessions[sessionID]; ok {
		return e
	}
	e := &entry{state: newState(), lastActivity: time.Now()}
	s.sessions[sessionID] = e
	return e
}

func snapshot(st *State) State {
	out := *st
	out.Touched = make(map[string]bool, len(st.Touched))
	for k, v := range st.Touched {
		out.Touched[k] = v
	}
	return out
}
