package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/tripmesh/tripmesh/logging"
)

// ToolContext is the surface a tool implementation sees while executing one
// function call. Mutations (state writes, transfer and escalation requests,
// artifact saves) are accumulated as EventActions rather than applied to the
// session directly; the flow merges them into the finalized tool event.
type ToolContext struct {
	run     *RunContext
	callID  string
	agent   AgentInfo
	pending EventActions
	valid   bool

	*loggerAdapter
}

// NewToolContext binds a tool context to its parent run context and the
// function call it serves.
func NewToolContext(run *RunContext, callID string) *ToolContext {
	return &ToolContext{
		run:           run,
		callID:        callID,
		agent:         run.Agent,
		valid:         true,
		loggerAdapter: newLoggerAdapter(run.Logger()),
	}
}

// Context returns the run's context.Context.
func (tc *ToolContext) Context() context.Context { return tc.run.Context }

// SessionID returns the owning session's ID.
func (tc *ToolContext) SessionID() string { return tc.run.SessionID }

// RunID returns the owning run's ID.
func (tc *ToolContext) RunID() string { return tc.run.RunID }

// Logger returns the run's logger.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// FunctionCallID returns the ID of the function call being executed.
func (tc *ToolContext) FunctionCallID() string { return tc.callID }

// AgentName returns the name of the agent that issued the call.
func (tc *ToolContext) AgentName() string { return tc.agent.Name }

// AgentType returns the type of the agent that issued the call.
func (tc *ToolContext) AgentType() string { return tc.agent.Type }

// GetState reads a key from run state.
func (tc *ToolContext) GetState(k string) (any, bool) {
	return tc.run.GetState(k)
}

// SetState writes a key both to the run context (visible to later tool calls
// in the same run) and to the accumulated state delta.
func (tc *ToolContext) SetState(k string, v any) {
	tc.run.SetState(k, v)
	if tc.pending.StateDelta == nil {
		tc.pending.StateDelta = map[string]any{}
	}
	tc.pending.StateDelta[k] = v
}

// Actions exposes the accumulated event actions.
func (tc *ToolContext) Actions() *EventActions { return &tc.pending }

// SkipSummarization asks the flow not to summarize this tool's result.
func (tc *ToolContext) SkipSummarization() {
	if tc.pending.SkipSummarization == nil {
		b := true
		tc.pending.SkipSummarization = &b
	}
}

// TransferToAgent requests a handoff to the named agent.
func (tc *ToolContext) TransferToAgent(name string) {
	tc.pending.TransferToAgent = &name
	tc.LogInfo("tool.transfer.request",
		"from_agent", tc.AgentName(),
		"to_agent", name,
		"function_call_id", tc.callID)
}

// Escalate requests escalation to a more capable agent or a human.
func (tc *ToolContext) Escalate() {
	if tc.pending.Escalate == nil {
		b := true
		tc.pending.Escalate = &b
	}
	tc.LogInfo("tool.escalate.request",
		"agent", tc.AgentName(),
		"function_call_id", tc.callID)
}

// SaveArtifact writes artifact bytes to the store and records the size in
// the artifact delta.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if tc.run.ArtifactStore == nil {
		return fmt.Errorf("artifact service not configured")
	}
	if err := tc.run.ArtifactStore.Save(tc.SessionID(), id, data); err != nil {
		return err
	}
	if tc.pending.ArtifactDelta == nil {
		tc.pending.ArtifactDelta = map[string]int{}
	}
	tc.pending.ArtifactDelta[id] = len(data)
	return nil
}

// LoadArtifact reads a stored artifact by id.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	if tc.run.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact service not configured")
	}
	return tc.run.ArtifactStore.Get(tc.SessionID(), id)
}

// ListArtifacts lists artifact IDs stored for this session.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	if tc.run.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact service not configured")
	}
	return tc.run.ArtifactStore.List(tc.SessionID())
}

// SearchMemory runs a recall query against the memory store.
func (tc *ToolContext) SearchMemory(q string, limit int) ([]SearchResult, error) {
	if tc.run.MemoryStore == nil {
		return nil, fmt.Errorf("memory service not configured")
	}
	return tc.run.MemoryStore.Search(tc.SessionID(), q, limit)
}

// StoreMemory saves content with metadata to the memory store.
func (tc *ToolContext) StoreMemory(content string, md map[string]any) error {
	if tc.run.MemoryStore == nil {
		return fmt.Errorf("memory service not configured")
	}
	return tc.run.MemoryStore.Store(tc.SessionID(), content, md)
}

// GetSessionHistory returns the session's filtered conversation history.
func (tc *ToolContext) GetSessionHistory() []Event {
	if tc.run.Session == nil {
		return nil
	}
	return tc.run.Session.GetConversationHistory()
}

// RefreshSession reloads the session from the session store, picking up
// events appended by other components since the run started.
func (tc *ToolContext) RefreshSession() error {
	if tc.run.SessionStore == nil {
		return fmt.Errorf("session service not configured")
	}
	s, err := tc.run.SessionStore.Get(tc.SessionID())
	if err != nil {
		return err
	}
	tc.run.Session = s
	return nil
}

// EmitEvent sends ev on the run's emit channel without touching the
// accumulated actions.
func (tc *ToolContext) EmitEvent(ev Event) error {
	if tc.run.Emit == nil {
		return fmt.Errorf("emit channel not configured")
	}
	select {
	case <-tc.run.Context.Done():
		return tc.run.Context.Err()
	case tc.run.Emit <- ev:
	}
	return nil
}

// Validate checks the context is structurally usable.
func (tc *ToolContext) Validate() error {
	if !tc.IsValid() {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}

// IsValid reports whether Validate would succeed.
func (tc *ToolContext) IsValid() bool {
	return tc.valid && tc.run != nil && tc.run.SessionID != "" && tc.callID != ""
}

// InternalRunContext returns the parent run context.
func (tc *ToolContext) InternalRunContext() *RunContext { return tc.run }

// InternalApplyActions merges the accumulated actions into ev. Used when
// finalizing tool events.
func (tc *ToolContext) InternalApplyActions(ev *Event) {
	if len(tc.pending.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, tc.pending.StateDelta)
	}
	if tc.pending.TransferToAgent != nil {
		ev.Actions.TransferToAgent = tc.pending.TransferToAgent
		tc.LogInfo("tool.transfer.applied",
			"from_agent", tc.AgentName(),
			"to_agent", *tc.pending.TransferToAgent,
			"function_call_id", tc.callID)
	}
	if tc.pending.Escalate != nil {
		ev.Actions.Escalate = tc.pending.Escalate
		tc.LogInfo("tool.escalate.applied",
			"agent", tc.AgentName(),
			"function_call_id", tc.callID)
	}
}
