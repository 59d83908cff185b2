package flow

// SingleAgentFlow runs a standalone agent: instructions, history and tool
// declarations go in, model events come out. No transfers.
type SingleAgentFlow struct{ *BaseFlow }

// NewSingleAgentFlow wires the default request processors for a lone agent.
func NewSingleAgentFlow(agent FlowAgent) *SingleAgentFlow {
	base := NewBaseFlow(agent)
	base.AddRequestProcessor(NewInstructionsProcessor())
	base.AddRequestProcessor(NewContentsProcessor())
	base.AddRequestProcessor(NewToolsProcessor())
	return &SingleAgentFlow{BaseFlow: base}
}
