package testutil

import (
	"github.com/tripmesh/tripmesh/core"
)

// EventBuilder builds events fluently for tests:
//
//	ev := NewEventBuilder().Author("agent").Run("run-1").AssistantText("hello").Build()
//
// Only chain what the test needs; everything else gets defaults.
type EventBuilder struct {
	author       string
	runID        string
	id           string
	role         string
	parts        []core.Part
	partial      *bool
	turnComplete *bool
	actions      core.EventActions
	branch       *string
	longRunning  []string
}

// NewEventBuilder starts a builder with author "agent".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent"} }

func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

func (b *EventBuilder) Run(id string) *EventBuilder { b.runID = id; return b }

// ID overrides the generated event ID for tests that need determinism.
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

func (b *EventBuilder) Branch(br string) *EventBuilder { b.branch = &br; return b }

func (b *EventBuilder) Partial(p bool) *EventBuilder { b.partial = &p; return b }

func (b *EventBuilder) TurnComplete(c bool) *EventBuilder { b.turnComplete = &c; return b }

// text appends a text part under the given role.
func (b *EventBuilder) text(role, t string) *EventBuilder {
	b.role = role
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// UserText adds a text part and sets the role to user.
func (b *EventBuilder) UserText(t string) *EventBuilder { return b.text("user", t) }

// AssistantText adds a text part and sets the role to assistant.
func (b *EventBuilder) AssistantText(t string) *EventBuilder { return b.text("assistant", t) }

// ToolText adds a text part and sets the role to tool.
func (b *EventBuilder) ToolText(t string) *EventBuilder { return b.text("tool", t) }

// AddPart appends an arbitrary content part.
func (b *EventBuilder) AddPart(p core.Part) *EventBuilder {
	b.parts = append(b.parts, p)
	return b
}

// FunctionCall adds a function call part with a JSON argument string.
func (b *EventBuilder) FunctionCall(name, args string) *EventBuilder {
	return b.AddPart(core.FunctionCallPart{
		FunctionCall: core.FunctionCall{Name: name, Arguments: args},
	})
}

// FunctionResponse adds a tool execution result part.
func (b *EventBuilder) FunctionResponse(id, name string, result interface{}, err error) *EventBuilder {
	fr := core.FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	return b.AddPart(core.FunctionResponsePart{FunctionResponse: fr})
}

func (b *EventBuilder) SkipSummarization() *EventBuilder {
	t := true
	b.actions.SkipSummarization = &t
	return b
}

func (b *EventBuilder) Escalate() *EventBuilder { t := true; b.actions.Escalate = &t; return b }

func (b *EventBuilder) Transfer(to string) *EventBuilder { b.actions.TransferToAgent = &to; return b }

// LongRunning records long-running tool call IDs on the event.
func (b *EventBuilder) LongRunning(ids ...string) *EventBuilder {
	b.longRunning = append(b.longRunning, ids...)
	return b
}

// Build assembles the core.Event.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.runID, b.author)
	if b.id != "" {
		ev.ID = b.id
	}
	ev.Branch = b.branch
	ev.Partial = b.partial
	ev.TurnComplete = b.turnComplete
	if len(b.longRunning) > 0 {
		ev.LongRunningToolIDs = append([]string{}, b.longRunning...)
	}
	ev.Actions = b.actions

	if len(b.parts) > 0 {
		role := b.role
		if role == "" {
			role = "assistant"
		}
		ev.Content = &core.Content{Role: role, Parts: append([]core.Part{}, b.parts...)}
	}
	return ev
}
