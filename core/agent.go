package core

// Agent is the unit of execution. An agent takes its input from the
// RunContext, does its work, and reports results and state changes by
// emitting events on the context's channel. The sub-agent methods let
// agents form hierarchies for multi-agent workflows; FindAgent resolves a
// name anywhere in the hierarchy reachable from this node.
//
// Implementations are expected to honor context cancellation, pace
// themselves on the resume channel after non-partial events, and keep
// Start/Stop idempotent.
type Agent interface {
	Name() string
	Start(runCtx *RunContext) error
	Stop(runCtx *RunContext) error
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
	Description() string
}

// AgentInfo identifies an agent in contexts and events. Name is the public
// identifier; Type is a coarse category such as "orchestrator" or "worker".
type AgentInfo struct{ Name, Type string }
