package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripmesh/tripmesh/artifact"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/memory"
	"github.com/tripmesh/tripmesh/session"
)

// Options holds the dependency and configuration overrides passed to New.
type Options struct {
	// MaxConcurrentRuns caps how many runs may be in flight at once.
	MaxConcurrentRuns int
	// EnableStreaming selects live event delivery over buffered delivery.
	EnableStreaming bool
	// EventBufferSize is the capacity of the event channels.
	EventBufferSize int
	// MaxModelCalls bounds model calls within a single run.
	MaxModelCalls int

	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore
	MemoryStore   core.MemoryStore
	Logger        logging.Logger
}

// Runner executes a root agent per run: it builds the run context, pumps
// events from the agent to the caller, applies event side effects, and
// persists history. Safe for concurrent use.
type Runner struct {
	agent core.Agent

	maxConcurrentRuns int
	enableStreaming   bool
	eventBufferSize   int
	maxModelCalls     int

	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	memoryStore   core.MemoryStore
	logger        logging.Logger

	mu         sync.RWMutex
	activeRuns map[string]context.CancelFunc
}

// New constructs a Runner for the given root agent with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentRuns: 10,
		EnableStreaming:   true,
		EventBufferSize:   100,
		MaxModelCalls:     100,
		SessionStore:      session.NewInMemoryStore(),
		ArtifactStore:     artifact.NewInMemoryStore(),
		MemoryStore:       memory.NewInMemoryStore(),
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:             agent,
		maxConcurrentRuns: opts.MaxConcurrentRuns,
		enableStreaming:   opts.EnableStreaming,
		eventBufferSize:   opts.EventBufferSize,
		maxModelCalls:     opts.MaxModelCalls,
		sessionStore:      opts.SessionStore,
		artifactStore:     opts.ArtifactStore,
		memoryStore:       opts.MemoryStore,
		logger:            opts.Logger,
		activeRuns:        make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous run of the root agent in the given session.
func (r *Runner) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	runID := core.NewID()

	ctx, cancel := context.WithCancel(ctx)
	if err := r.register(runID, cancel); err != nil {
		cancel()
		return "", nil, nil, err
	}

	outCh := make(chan core.Event, r.eventBufferSize)
	errCh := make(chan error, 1)
	emitCh := make(chan core.Event, r.eventBufferSize)
	resumeCh := make(chan struct{}, 1)

	runCtx := core.NewRunContext(
		ctx, sessionID, runID,
		core.AgentInfo{Name: r.agent.Name(), Type: "root"},
		userContent, emitCh, resumeCh, sess,
		r.sessionStore, r.artifactStore, r.memoryStore, r.logger,
	)
	runCtx.SetModelCallLimit(r.maxModelCalls)

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		r.unregister(runID)
		cancel()
		return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
	}

	go func() {
		defer func() {
			close(emitCh)
			r.unregister(runID)
		}()

		if err := r.runAgent(runCtx); err != nil {
			select {
			case <-runCtx.Done():
			case errCh <- fmt.Errorf("agent execution failed: %w", err):
			}
		}
	}()

	go func() {
		defer func() { close(outCh); close(errCh) }()
		r.pumpEvents(runCtx, sessionID, emitCh, resumeCh, outCh, errCh)
	}()

	return runID, outCh, errCh, nil
}

// Cancel requests termination of an in-flight run.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[runID]
	r.mu.RUnlock()
	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}
	cancel()
	return nil
}

func (r *Runner) register(runID string, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxConcurrentRuns > 0 && len(r.activeRuns) >= r.maxConcurrentRuns {
		return fmt.Errorf("max concurrent runs reached (%d)", r.maxConcurrentRuns)
	}
	r.activeRuns[runID] = cancel
	return nil
}

func (r *Runner) unregister(runID string) {
	r.mu.Lock()
	delete(r.activeRuns, runID)
	r.mu.Unlock()
}

func (r *Runner) runAgent(runCtx *core.RunContext) error {
	if err := r.agent.Start(runCtx); err != nil {
		return err
	}
	defer func() {
		if err := r.agent.Stop(runCtx); err != nil {
			r.logger.Warn("runner.agent.stop_failed", "agent", r.agent.Name(), "error", err)
		}
	}()
	return r.agent.Run(runCtx)
}

// pumpEvents forwards agent events to the caller. Non-partial events are
// persisted first, then delivered, then acknowledged on the resume channel
// so the emitting agent can proceed knowing its event was stored.
func (r *Runner) pumpEvents(
	runCtx *core.RunContext,
	sessionID string,
	emitCh <-chan core.Event,
	resumeCh chan<- struct{},
	outCh chan<- core.Event,
	errCh chan<- error,
) {
	for {
		select {
		case <-runCtx.Done():
			return
		case ev, ok := <-emitCh:
			if !ok {
				return
			}

			if err := r.applyEventActions(sessionID, ev); err != nil {
				r.fail(runCtx, errCh, fmt.Errorf("failed to process event actions: %w", err))
				return
			}
			if !ev.IsPartial() {
				if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
					r.fail(runCtx, errCh, fmt.Errorf("failed to append event to session: %w", err))
					return
				}
			}

			select {
			case <-runCtx.Done():
				return
			case outCh <- ev:
				r.logger.Debug("runner.event.delivered", "event_id", ev.ID, "session_id", sessionID)
			}

			if !ev.IsPartial() {
				select {
				case <-runCtx.Done():
					return
				case resumeCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (r *Runner) fail(runCtx *core.RunContext, errCh chan<- error, err error) {
	select {
	case <-runCtx.Done():
	case errCh <- err:
	}
}

func (r *Runner) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}
	if ev.Actions.TransferToAgent != nil && *ev.Actions.TransferToAgent != "" {
		r.logger.Debug("runner.event.transfer_to_agent", "target", *ev.Actions.TransferToAgent, "session_id", sessionID)
	}
	if ev.Actions.Escalate != nil && *ev.Actions.Escalate {
		r.logger.Debug("runner.event.escalate", "session_id", sessionID)
	}
	return nil
}
