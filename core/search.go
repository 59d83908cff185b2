package core

// SearchResult is one memory item returned from MemoryStore.Search, with a
// relevance score and whatever metadata was stored alongside it.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}
