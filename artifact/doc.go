// Package artifact provides core.ArtifactStore backends. The interface lives
// in core so implementations here (in-memory, S3-compatible object storage)
// can be swapped without touching calling code. Depend on the core interface,
// not the concrete types.
package artifact
