package session

import (
	"sync"
	"time"

	"github.com/fintechfusion/loan-officer/internal/model/loan"
)

// Store keeps conversation sessions in memory, keyed by the caller-supplied
// id. Ids are opaque; an unknown id yields a fresh session on first use, and
// an accidental collision simply continues the existing record (last writer
// wins, never a merge).
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *loan.Session
}

// NewStore bootstraps the in-memory session store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Do runs fn with exclusive access to the session for id, creating the
// session if it does not exist. Mutations made by fn are retained. Calls for
// the same id are serialized; calls for different ids proceed in parallel.
func (s *Store) Do(id string, fn func(sess *loan.Session)) {
	e := s.entryFor(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.session)
	e.session.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a deep copy of the session for id, if it exists.
func (s *Store) Snapshot(id string) (loan.Session, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return loan.Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) entryFor(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		now := time.Now().UTC()
		e = &entry{session: &loan.Session{
			ID:        id,
			State:     loan.StateInit,
			CreatedAt: now,
			UpdatedAt: now,
		}}
		s.entries[id] = e
	}
	return e
}
