// Package memory provides MemoryStore implementations. The interface itself
// and SearchResult live in core; depend on core.MemoryStore and choose a
// backend (such as the in-memory store here) at wiring time. Keeping the
// contract in core lets alternative backends (vector stores, embedding
// indexes) plug in without dependency cycles.
package memory
