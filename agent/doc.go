// Package agent contains the built-in agent implementations:
//
//   - BaseAgent, the embeddable lifecycle and hierarchy plumbing
//   - ModelAgent, the conversational tool-calling agent driven by a flow
//   - SequentialAgent, running children in order
//   - HandoffAgent, routing to a specialist chosen by a triage agent
//
// Agents nest arbitrarily via SetSubAgents; each child has at most one
// parent. An agent's Run receives a *core.RunContext, and composite agents
// coordinate child runs through it. Persistence, model specifics and the
// tool registry stay in their own packages.
package agent
