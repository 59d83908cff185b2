// Package tripmesh provides a high-level façade over the runner and
// service abstractions (sessions, artifacts, memory & logging) enabling rapid
// construction of multi‑agent travel assistants. Most applications interact
// with this package by:
//  1. Creating a TripMesh via New() with a root agent (optionally overriding
//     default in‑memory services)
//  2. Invoking the agent asynchronously (Run) or synchronously (RunSync)
//
// The façade delegates orchestration to runner.Runner while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable store implementations
// and a structured logger.
package tripmesh

import (
	"context"

	"github.com/tripmesh/tripmesh/artifact"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/memory"
	"github.com/tripmesh/tripmesh/runner"
	"github.com/tripmesh/tripmesh/session"
)

// Options configures the TripMesh instance.
type Options struct {
	// MaxConcurrentRuns limits how many runs can execute simultaneously.
	// Set to 0 for unlimited (not recommended).
	MaxConcurrentRuns int

	// EnableStreaming determines whether events are streamed in real-time
	// or buffered until completion.
	EnableStreaming bool

	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// MaxModelCalls limits the number of model calls per run.
	MaxModelCalls int

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore
	MemoryStore   core.MemoryStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TripMesh is the high-level façade aggregating the underlying runner and services.
type TripMesh struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new TripMesh instance around the given root agent with optional
// overrides. Any unset service is initialized with an in-memory implementation.
func New(agent core.Agent, optFns ...func(o *Options)) *TripMesh {
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

	r := runner.New(agent, func(o *runner.Options) {
		o.MaxConcurrentRuns = opts.MaxConcurrentRuns
		o.EnableStreaming = opts.EnableStreaming
		o.EventBufferSize = opts.EventBufferSize
		o.MaxModelCalls = opts.MaxModelCalls
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.MemoryStore = opts.MemoryStore
		o.Logger = opts.Logger
	})

	return &TripMesh{opts: opts, runner: r}
}

// Run starts an asynchronous run returning event & error channels.
func (m *TripMesh) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return m.runner.Run(ctx, sessionID, userContent)
}

// RunSync is a synchronous helper that drains the async channels, accumulates
// events and returns the runID.
func (m *TripMesh) RunSync(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := m.runner.Run(ctx, sessionID, userContent)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event
	for {
		select {
		case <-ctx.Done():
			// Context cancelled - return events collected so far
			return runID, events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				// Events channel closed - check for terminal error
				select {
				case err := <-errorsCh:
					return runID, events, err
				default:
					return runID, events, nil
				}
			}
			events = append(events, event)

		case err := <-errorsCh:
			if err != nil {
				return runID, events, err
			}
		}
	}
}

// Cancel aborts an in-flight run by ID.
func (m *TripMesh) Cancel(runID string) error {
	return m.runner.Cancel(runID)
}
