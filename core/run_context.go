package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/tripmesh/tripmesh/logging"
)

// RunContext is the per-run execution scope handed to an Agent's Run method.
// It bundles the cancellation context, run identifiers, the user's input, the
// event channel pair used to coordinate with the runner, and the backing
// session, artifact and memory services.
//
// Writes made through SetState and AddArtifact are buffered locally; they
// reach the session only when CommitStateDelta runs or when EmitEvent folds
// them into an outgoing event. Clone and NewChildContext give nested agents
// their own buffers while sharing the services underneath.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Agent            AgentInfo
	UserContent      Content
	Emit             chan<- Event
	Resume           <-chan struct{}
	SessionStore     SessionStore
	ArtifactStore    ArtifactStore
	MemoryStore      MemoryStore
	Limiter          *ModelLimiter
	Session          *Session
	StateDelta       map[string]any
	Artifacts        []string
	Branch           string

	*loggerAdapter
}

// NewRunContext builds a RunContext with fresh delta buffers and an
// unlimited model-call limiter. Use SetModelCallLimit to install a budget.
func NewRunContext(
	ctx context.Context,
	sessionID, runID string,
	agent AgentInfo,
	userContent Content,
	emit chan<- Event,
	resume <-chan struct{},
	sess *Session,
	sessionStore SessionStore,
	artifactStore ArtifactStore,
	memoryStore MemoryStore,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Emit:          emit,
		Resume:        resume,
		Session:       sess,
		SessionStore:  sessionStore,
		ArtifactStore: artifactStore,
		MemoryStore:   memoryStore,
		Limiter:       NewModelLimiter(0),
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// SetModelCallLimit replaces the limiter with one bounded to max calls.
func (rc *RunContext) SetModelCallLimit(max int) { rc.Limiter = NewModelLimiter(max) }

// Done exposes the underlying context's cancellation channel.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err reports the underlying context's cancellation error, if any.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState looks up k in the staged delta first, then in the session.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}
	if rc.Session == nil {
		return nil, false
	}
	return rc.Session.GetState(k)
}

// SetState buffers a state write until the next commit or emit.
func (rc *RunContext) SetState(k string, v any) { rc.StateDelta[k] = v }

// ApplyStateDelta buffers every pair from d.
func (rc *RunContext) ApplyStateDelta(d map[string]any) { maps.Copy(rc.StateDelta, d) }

// AddArtifact marks an artifact id for attachment to the next emitted event.
func (rc *RunContext) AddArtifact(id string) { rc.Artifacts = append(rc.Artifacts, id) }

// SaveArtifact writes data to the ArtifactStore and marks the id for the
// next emitted event.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}
	if err := rc.ArtifactStore.Save(rc.SessionID, id, data); err != nil {
		return err
	}

	rc.AddArtifact(id)

	return nil
}

// GetArtifact loads previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	return rc.ArtifactStore.Get(rc.SessionID, id)
}

// ListArtifacts lists the artifact ids stored for this session.
func (rc *RunContext) ListArtifacts() ([]string, error) {
	if rc.ArtifactStore == nil {
		return []string{}, nil
	}
	return rc.ArtifactStore.List(rc.SessionID)
}

// SearchMemory runs a relevance query against the MemoryStore. Without a
// configured store it returns an empty result set rather than an error.
func (rc *RunContext) SearchMemory(q string, limit int) ([]SearchResult, error) {
	if rc.MemoryStore == nil {
		return []SearchResult{}, nil
	}
	return rc.MemoryStore.Search(rc.SessionID, q, limit)
}

// StoreMemory records content with metadata in the MemoryStore.
func (rc *RunContext) StoreMemory(content string, md map[string]any) error {
	if rc.MemoryStore == nil {
		return fmt.Errorf("memory store not configured")
	}
	return rc.MemoryStore.Store(rc.SessionID, content, md)
}

// RefreshSession replaces the session snapshot with the store's current copy.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	s, err := rc.SessionStore.Get(rc.SessionID)
	if err != nil {
		return err
	}
	rc.Session = s

	return nil
}

// CommitStateDelta writes the buffered delta through to the SessionStore
// and clears the buffer. A no-op when nothing is staged.
func (rc *RunContext) CommitStateDelta() error {
	if len(rc.StateDelta) == 0 {
		return nil
	}
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}
	if err := rc.SessionStore.ApplyDelta(rc.SessionID, rc.StateDelta); err != nil {
		return err
	}

	rc.StateDelta = map[string]any{}

	return nil
}

// GetSessionHistory returns the session's recorded events.
func (rc *RunContext) GetSessionHistory() []Event {
	if rc.Session == nil {
		return []Event{}
	}
	return rc.Session.GetEvents()
}

// GetAgentName returns the name of the agent this run belongs to.
func (rc *RunContext) GetAgentName() string { return rc.Agent.Name }

// GetAgentType returns the agent's category label.
func (rc *RunContext) GetAgentType() string { return rc.Agent.Type }

// fork copies the context with the given channels and empty delta buffers.
func (rc *RunContext) fork(emit chan<- Event, resume <-chan struct{}) *RunContext {
	return &RunContext{
		Context:       rc.Context,
		SessionID:     rc.SessionID,
		RunID:         rc.RunID,
		Agent:         rc.Agent,
		UserContent:   rc.UserContent,
		Emit:          emit,
		Resume:        resume,
		SessionStore:  rc.SessionStore,
		ArtifactStore: rc.ArtifactStore,
		MemoryStore:   rc.MemoryStore,
		Limiter:       rc.Limiter,
		Session:       rc.Session,
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		Branch:        rc.Branch,
		loggerAdapter: rc.loggerAdapter,
	}
}

// Clone copies the context, duplicating the staged delta and artifact
// buffers so writes on the copy stay isolated.
func (rc *RunContext) Clone() *RunContext {
	c := rc.fork(rc.Emit, rc.Resume)
	maps.Copy(c.StateDelta, rc.StateDelta)
	c.Artifacts = append(c.Artifacts, rc.Artifacts...)
	return c
}

// WithBranch clones the context under a new branch label.
func (rc *RunContext) WithBranch(b string) *RunContext {
	c := rc.Clone()
	c.Branch = b
	return c
}

// NewChildContext derives a context for a nested execution path, rewiring
// the coordination channels and starting with empty buffers. An empty branch
// keeps the parent's label.
func (rc *RunContext) NewChildContext(emit chan<- Event, resume <-chan struct{}, branch string) *RunContext {
	c := rc.fork(emit, resume)
	if branch != "" {
		c.Branch = branch
	}
	return c
}

// EmitEvent folds the staged StateDelta and Artifacts into ev's actions,
// sends it on the Emit channel, and clears the buffers.
func (rc *RunContext) EmitEvent(ev Event) error {
	if len(rc.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, rc.StateDelta)
	}
	if len(rc.Artifacts) > 0 {
		if ev.Actions.ArtifactDelta == nil {
			ev.Actions.ArtifactDelta = map[string]int{}
		}
		for _, id := range rc.Artifacts {
			ev.Actions.ArtifactDelta[id] = 1
		}
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	rc.StateDelta = map[string]any{}
	rc.Artifacts = []string{}

	return nil
}

// WaitForResume blocks until the runner signals Resume or the context is
// cancelled. A nil Resume channel means no pacing; it returns immediately.
func (rc *RunContext) WaitForResume() error {
	if rc.Resume == nil {
		return nil
	}

	select {
	case <-rc.Resume:
		return nil
	case <-rc.Context.Done():
		return rc.Context.Err()
	}
}
