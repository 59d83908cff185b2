package flow

// Selector picks the flow an agent should run with, based on its
// capabilities rather than explicit configuration.
type Selector struct{}

// NewSelector creates a new flow selector.
func NewSelector() *Selector { return &Selector{} }

// SelectFlow returns SingleAgentFlow for isolated agents (no transfers, no
// sub-agents) and MultiAgentFlow for everything else.
func (s *Selector) SelectFlow(agent FlowAgent) Flow {
	if !agent.IsTransferEnabled() && len(agent.GetSubAgents()) == 0 {
		return NewSingleAgentFlow(agent)
	}
	return NewMultiAgentFlow(agent)
}
