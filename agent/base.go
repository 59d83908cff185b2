package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tripmesh/tripmesh/core"
)

// BaseAgent supplies the shared pieces of every agent: identity, the
// Start/Stop lifecycle, and parent/child hierarchy management. Concrete
// agents embed it and add a Run method to satisfy core.Agent. Exported
// methods are goroutine-safe.
type BaseAgent struct {
	name        string
	description string
	mu          sync.Mutex
	cancel      context.CancelFunc
	running     bool
	parent      core.Agent
	subAgents   []core.Agent
}

// NewBaseAgent constructs a BaseAgent with a default description; override
// it with SetDescription.
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the agent's name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent's description, shown to sibling agents when
// deciding whether to transfer.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription replaces the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Start marks the agent running and sets up a cancellable context derived
// from the run. Starting an already-running agent is an error.
func (b *BaseAgent) Start(runCtx *core.RunContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return errors.New("agent is already running")
	}

	_, cancel := context.WithCancel(runCtx.Context)
	b.cancel = cancel
	b.running = true
	return nil
}

// Stop cancels the agent's derived context and clears the running flag.
// Stopping an agent that is not running is an error.
func (b *BaseAgent) Stop(_ *core.RunContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return errors.New("agent is not running")
	}

	if b.cancel != nil {
		b.cancel()
	}
	b.running = false
	return nil
}

// SetSubAgents replaces the child set atomically. Previous children have
// their parent link cleared first; each new child gets this agent as its
// parent, keeping the single-parent invariant.
func (b *BaseAgent) SetSubAgents(children ...core.Agent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, child := range b.subAgents {
		if setter, ok := child.(interface{ setParent(core.Agent) }); ok {
			setter.setParent(nil)
		}
	}
	b.subAgents = nil

	for _, child := range children {
		if setter, ok := child.(interface{ setParent(core.Agent) }); ok {
			// The wrapper supplies Run so the base satisfies core.Agent.
			setter.setParent(&agentWrapper{b})
		}
		b.subAgents = append(b.subAgents, child)
	}
	return nil
}

func (b *BaseAgent) setParent(p core.Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parent = p
}

// Parent returns the parent agent, or nil for a root agent.
func (b *BaseAgent) Parent() core.Agent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parent
}

// SubAgents returns a copy of the child agent slice.
func (b *BaseAgent) SubAgents() []core.Agent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Agent, len(b.subAgents))
	copy(out, b.subAgents)
	return out
}

// FindAgent searches depth-first, starting with this agent, for the first
// agent whose name matches. Returns nil when nothing matches.
func (b *BaseAgent) FindAgent(name string) core.Agent {
	if b.name == name {
		return &agentWrapper{b}
	}
	for _, child := range b.SubAgents() {
		if child.Name() == name {
			return child
		}
		if found := child.FindAgent(name); found != nil {
			return found
		}
	}
	return nil
}

// agentWrapper lets a BaseAgent stand in as a core.Agent in hierarchy
// references; it cannot be run directly.
type agentWrapper struct{ *BaseAgent }

func (w *agentWrapper) Run(_ *core.RunContext) error {
	return fmt.Errorf("cannot execute BaseAgent directly - embed it in a concrete agent with Run implementation")
}
