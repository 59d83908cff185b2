package core

import "context"

// Runner is the orchestration contract for executing a root agent inside a
// session. Events produced by one run are delivered in pipeline order; the
// events channel closes when the run finishes (success, error or
// cancellation) and the error channel carries at most one terminal error
// before closing.
//
// Partial events may appear in the stream; consumers decide via IsPartial()
// whether to persist or only display them.
type Runner interface {
	// Run starts an asynchronous execution bound to sessionID, seeded with
	// userContent. It returns the run ID (for Cancel and tracking), the
	// ordered event stream, and the terminal error channel. The immediate
	// error return covers startup failures such as a session load error.
	Run(ctx context.Context, sessionID string, userContent Content) (string, <-chan Event, <-chan error, error)

	// Cancel requests cooperative termination of an in-flight run. It is
	// idempotent; cancelling an unknown or already finished run returns an
	// error saying so.
	Cancel(runID string) error
}
