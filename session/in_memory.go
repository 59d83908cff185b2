package session

import (
	"sync"

	"github.com/tripmesh/tripmesh/core"
)

// InMemoryStore keeps sessions in a process-local map. Good for tests and
// short-lived demos; nothing survives a restart. Callers always receive
// clones, so mutating a returned session never touches stored state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns a clone of the session, creating it on first access.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(sessionID).Clone(), nil
}

// Create makes a fresh session under the given id, replacing any existing one.
func (s *InMemoryStore) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess.Clone(), nil
}

// AppendEvent records an event on the session, creating it if needed.
func (s *InMemoryStore) AppendEvent(sessionID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).AddEvent(ev)
	return nil
}

// ApplyDelta merges a key/value delta into the session state.
func (s *InMemoryStore) ApplyDelta(sessionID string, delta map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).ApplyStateDelta(delta)
	return nil
}

// getOrCreateLocked assumes the write lock is held.
func (s *InMemoryStore) getOrCreateLocked(sessionID string) *core.Session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = core.NewSession(sessionID)
		s.sessions[sessionID] = sess
	}
	return sess
}
