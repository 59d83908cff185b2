// Package runner coordinates agent execution: it launches runs, pumps agent
// events through persistence and side-effect application (session state,
// artifacts), delivers them to callers and manages cancellation. It sits
// between the top-level TripMesh facade and the agent implementations.
package runner
