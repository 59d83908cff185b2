// Package testutil holds builders that cut the boilerplate of constructing
// sessions and events in tests. Test-only; nothing here is meant for
// production code paths.
package testutil
