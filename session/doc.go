// Package session provides concrete implementations of core.SessionStore.
// The Session type and the store interface live in core so that agents and
// the runner never depend on a specific storage backend; only the wiring
// layer chooses one. Additional backends (Redis, Postgres) belong in
// sub-packages alongside the in-memory store.
package session
