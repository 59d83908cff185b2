// Package core defines the domain types everything else builds on: Agent,
// Session, Event, the RunContext and ToolContext execution scopes, and the
// pluggable store interfaces for sessions, artifacts and memory. It carries
// no implementation concerns; persistence, orchestration and concrete agents
// live in their own packages and depend inward on these contracts.
package core
