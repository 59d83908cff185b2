package testutil

import (
	"maps"

	"github.com/tripmesh/tripmesh/core"
)

// SessionBuilder assembles sessions for tests:
//
//	sess := NewSessionBuilder("sess-1").State("k", "v").Events(ev1, ev2).Build()
type SessionBuilder struct {
	id     string
	state  map[string]any
	events []core.Event
}

// NewSessionBuilder starts a builder for the given session id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, state: map[string]any{}}
}

// State sets a state key on the resulting session.
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Event appends one event to the session history.
func (b *SessionBuilder) Event(ev core.Event) *SessionBuilder {
	b.events = append(b.events, ev)
	return b
}

// Events appends several events to the session history.
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Build materializes the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	maps.Copy(s.State, b.state)
	s.Events = append(s.Events, b.events...)
	return s
}
