package core

// MemoryStore persists and retrieves conversational memory snippets, scoped
// by session. How Search ranks results (keywords, embeddings) is up to the
// implementation.
type MemoryStore interface {
	Get(sessionID string) (map[string]any, error)
	Put(sessionID string, delta map[string]any) error
	Search(sessionID string, query string, limit int) ([]SearchResult, error)
	Store(sessionID string, content string, metadata map[string]any) error
	Delete(sessionID string, memoryID string) error
}
