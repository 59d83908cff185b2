// Package logging wraps slog behind a small Logger interface so any
// structured logger can be plugged into the framework.
//
// Logger carries the four standard methods (Debug, Info, Warn, Error) with
// slog-style key/value args. The package ships three implementations:
//
//   - SlogAdapter, wrapping an existing *slog.Logger
//   - TripMeshLogger, which adds component/session/run context and helpers
//     for tool, model and flow instrumentation
//   - NoOpLogger, for tests and silent operation
//
// Typical wiring:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	tm := tripmesh.New(rootAgent, func(o *tripmesh.Options) { o.Logger = logger })
package logging
