package flow

// MultiAgentFlow extends the single-agent pipeline with dynamic injection of
// the transfer_to_agent tool, letting the model hand control to sub-agents.
type MultiAgentFlow struct{ *BaseFlow }

// NewMultiAgentFlow wires the default processors plus transfer support.
func NewMultiAgentFlow(agent FlowAgent) *MultiAgentFlow {
	base := NewBaseFlow(agent)
	base.AddRequestProcessor(NewInstructionsProcessor())
	base.AddRequestProcessor(NewContentsProcessor())
	base.AddRequestProcessor(NewToolsProcessor())
	base.AddRequestProcessor(NewTransferToolInjector())
	return &MultiAgentFlow{BaseFlow: base}
}
