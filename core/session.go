package core

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Session is the unit of conversational persistence: a key/value state bag
// plus the ordered event history of one conversation. All accessors take the
// internal lock, so a single Session may be shared across goroutines.
//
// Mutating calls (SetState, ApplyStateDelta, AddEvent) bump the Updated
// timestamp. Read accessors hand out copies so callers cannot reach the
// internal slices and maps.
type Session struct {
	ID       string                 `json:"id"`
	State    map[string]interface{} `json:"state"`
	Events   []Event                `json:"events"`
	Created  time.Time              `json:"created"`
	Updated  time.Time              `json:"updated"`
	Metadata map[string]string      `json:"metadata"`
	mu       sync.RWMutex
}

// NewSession creates an empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:       id,
		State:    map[string]interface{}{},
		Events:   []Event{},
		Created:  now,
		Updated:  now,
		Metadata: map[string]string{},
	}
}

// SetState stores one key/value pair in session state.
func (s *Session) SetState(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// GetState reports the value stored under key and whether it exists.
func (s *Session) GetState(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// ApplyStateDelta merges every pair from delta into State. Existing keys are
// overwritten; keys absent from delta are left alone.
func (s *Session) ApplyStateDelta(delta map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.State, delta)
	s.Updated = time.Now()
}

// AddEvent appends ev to the history.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a copy of the full event history.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Events)
}

// GetConversationHistory returns the events that belong in a model prompt:
// complete (non-partial) events whose content role is user, assistant or
// tool. Everything else (system notices, streaming fragments) is skipped.
func (s *Session) GetConversationHistory() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]Event, 0, len(s.Events))
	for _, ev := range s.Events {
		if ev.Content == nil {
			continue
		}
		switch ev.Content.Role {
		case "user", "assistant", "tool":
		default:
			continue
		}
		if ev.Partial != nil && *ev.Partial {
			continue
		}
		history = append(history, ev)
	}
	return history
}

// Clone returns a deep copy (state, events, metadata) that can be mutated
// independently of the original.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{
		ID:       s.ID,
		State:    maps.Clone(s.State),
		Events:   slices.Clone(s.Events),
		Created:  s.Created,
		Updated:  s.Updated,
		Metadata: maps.Clone(s.Metadata),
	}
}

// SessionStore persists sessions and their evolving state and event history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendEvent(sessionID string, event Event) error
	ApplyDelta(sessionID string, delta map[string]interface{}) error
}
