package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tripmesh/tripmesh/core"
)

// StoredMemory is one appended memory entry: an ID, the content text, and
// whatever metadata was supplied at store time.
type StoredMemory struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// InMemoryStore is a process-local core.MemoryStore. It keeps two things per
// session: a key/value memory map (Get/Put) and an append-only list of
// stored memories searched by case-sensitive substring match. Every search
// hit scores 1.0; swap in a semantic index for real retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	kv      map[string]map[string]any
	entries map[string]map[string]StoredMemory
}

// NewInMemoryStore creates an empty in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		kv:      make(map[string]map[string]any),
		entries: make(map[string]map[string]StoredMemory),
	}
}

// Get returns a copy of the session's key/value memory.
func (m *InMemoryStore) Get(sessionID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.kv[sessionID]))
	for k, v := range m.kv[sessionID] {
		out[k] = v
	}
	return out, nil
}

// Put merges delta into the session's key/value memory.
func (m *InMemoryStore) Put(sessionID string, delta map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kv[sessionID] == nil {
		m.kv[sessionID] = make(map[string]any)
	}
	for k, v := range delta {
		m.kv[sessionID][k] = v
	}
	return nil
}

// Search returns up to limit stored memories whose content contains query
// (any content when query is empty). Order is unspecified.
func (m *InMemoryStore) Search(sessionID string, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := []core.SearchResult{}
	for _, stored := range m.entries[sessionID] {
		if len(results) >= limit {
			break
		}
		if query != "" && !strings.Contains(stored.Content, query) {
			continue
		}
		md := make(map[string]any, len(stored.Metadata))
		for k, v := range stored.Metadata {
			md[k] = v
		}
		results = append(results, core.SearchResult{
			ID:       stored.ID,
			Content:  stored.Content,
			Score:    1.0,
			Metadata: md,
		})
	}
	return results, nil
}

// Store appends a memory entry under a generated incremental ID.
func (m *InMemoryStore) Store(sessionID string, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[sessionID] == nil {
		m.entries[sessionID] = make(map[string]StoredMemory)
	}
	id := fmt.Sprintf("mem_%d", len(m.entries[sessionID]))
	m.entries[sessionID][id] = StoredMemory{ID: id, Content: content, Metadata: metadata}
	return nil
}

// Delete removes one stored memory by ID.
func (m *InMemoryStore) Delete(sessionID string, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.entries[sessionID]
	if !ok {
		return fmt.Errorf("memory not found")
	}
	if _, ok := session[memoryID]; !ok {
		return fmt.Errorf("memory not found")
	}
	delete(session, memoryID)
	return nil
}
