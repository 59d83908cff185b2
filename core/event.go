package core

import (
	"time"

	"github.com/google/uuid"
)

// EventActions carries the orchestration side effects attached to an event:
// state and artifact deltas, transfer and escalation requests. Pointer and
// map fields distinguish "absent" from zero values. The runner interprets
// them after the event is persisted.
type EventActions struct {
	SkipSummarization *bool          `json:"skip_summarization,omitempty"`
	StateDelta        map[string]any `json:"state_delta,omitempty"`
	ArtifactDelta     map[string]int `json:"artifact_delta,omitempty"`
	TransferToAgent   *string        `json:"transfer_to_agent,omitempty"`
	Escalate          *bool          `json:"escalate,omitempty"`
}

// Event is the unit of communication between agents, the runner and clients.
// An event correlates to one run (RunID) and one author, may carry
// conversational Content (nil for control or error-only events), and carries
// orchestration directives in Actions. Events are immutable once emitted.
type Event struct {
	ID                 string            `json:"id"`
	RunID              string            `json:"run_id"`
	Author             string            `json:"author"`
	Actions            EventActions      `json:"actions"`
	LongRunningToolIDs []string          `json:"long_running_tool_ids,omitempty"`
	Branch             *string           `json:"branch,omitempty"`
	Timestamp          time.Time         `json:"timestamp"`
	Content            *Content          `json:"content,omitempty"`
	Partial            *bool             `json:"partial,omitempty"`
	TurnComplete       *bool             `json:"turn_complete,omitempty"`
	ErrorCode          *string           `json:"error_code,omitempty"`
	ErrorMessage       *string           `json:"error_message,omitempty"`
	Interrupted        *bool             `json:"interrupted,omitempty"`
	CustomMetadata     map[string]string `json:"custom_metadata,omitempty"`
}

// NewEvent creates a bare event bound to a run and authored by author. The
// semantic constructors below cover the common cases.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Actions:   EventActions{},
	}
}

// NewMessageEvent builds an assistant-role text message. Author can be an
// agent name or a system identifier.
func NewMessageEvent(author, message string) Event {
	e := NewEvent("", author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserMessageEvent builds a user-authored text message for the given run.
func NewUserMessageEvent(runID, message string) Event {
	e := NewEvent(runID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserContentEvent builds a user-authored event carrying arbitrary
// Content, for inputs that are more than a single text part.
func NewUserContentEvent(runID string, content *Content) Event {
	e := NewEvent(runID, "user")
	e.Content = content
	return e
}

// NewFunctionCallEvent builds an event in which author requests execution of
// the named function with serialized args.
func NewFunctionCallEvent(author, functionName, args string) Event {
	e := NewEvent("", author)
	e.Content = &Content{
		Role: "assistant",
		Parts: []Part{
			FunctionCallPart{FunctionCall: FunctionCall{
				Name:      functionName,
				Arguments: args,
			}},
		},
	}
	return e
}

// NewFunctionResponseEvent builds the completion event for a prior function
// call. A non-nil err is copied into the response's Error field.
func NewFunctionResponseEvent(author, id, functionName string, result interface{}, err error) Event {
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e := NewEvent("", author)
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewID returns a fresh UUID string for event and run correlation.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether the event is a streaming fragment that later
// events will complete.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// GetFunctionCalls returns the FunctionCall parts in content order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns the FunctionResponse parts in content order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether this event completes an assistant turn:
// no pending tool calls or responses and not a streaming fragment. Events
// that skip summarization or reference long-running tools count as final.
func (e Event) IsFinalResponse() bool {
	if (e.Actions.SkipSummarization != nil && *e.Actions.SkipSummarization) || len(e.LongRunningToolIDs) > 0 {
		return true
	}
	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}

// UnixSeconds returns the timestamp as fractional seconds since the Unix
// epoch, for metrics and numeric serialization.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
