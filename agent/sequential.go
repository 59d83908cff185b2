package agent

import (
	"fmt"

	"github.com/tripmesh/tripmesh/core"
)

// SequentialAgent runs its children one after another in declaration order,
// all sharing the same run context. Each child therefore sees the session
// state its predecessors wrote, which is how pipeline stages hand results
// forward (via output keys). The first child error stops the sequence.
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent builds a sequential coordinator over the given
// children. The children become sub-agents of the coordinator; their names
// must be unique within the pipeline.
func NewSequentialAgent(name string, children ...core.Agent) (*SequentialAgent, error) {
	seen := make(map[string]struct{}, len(children))
	for _, child := range children {
		if _, dup := seen[child.Name()]; dup {
			return nil, fmt.Errorf("duplicate pipeline stage %s", child.Name())
		}
		seen[child.Name()] = struct{}{}
	}

	s := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	if err := s.SetSubAgents(children...); err != nil {
		return nil, err
	}
	return s, nil
}

// Run implements core.Agent: children execute in order with the shared run
// context, stopping at the first error.
func (s *SequentialAgent) Run(runCtx *core.RunContext) error {
	for _, child := range s.children {
		if err := child.Run(runCtx); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
	}
	return nil
}
