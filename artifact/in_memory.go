package artifact

import "sync"

// InMemoryStore keeps artifacts in a nested map (sessionID -> artifactID ->
// bytes) behind an RWMutex. Bytes are copied on Save and Get so callers can
// never alias internal buffers. There are no quotas and nothing survives a
// restart; use the minio store for durable storage.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores or overwrites the artifact bytes for session and id.
func (a *InMemoryStore) Save(sessionID, artifactID string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.artifacts[sessionID] == nil {
		a.artifacts[sessionID] = make(map[string][]byte)
	}
	a.artifacts[sessionID][artifactID] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the artifact bytes, or ErrNotFound.
func (a *InMemoryStore) Get(sessionID, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[sessionID][artifactID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// List returns a snapshot of the artifact IDs stored for the session.
func (a *InMemoryStore) List(sessionID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]string, 0, len(a.artifacts[sessionID]))
	for id := range a.artifacts[sessionID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes the artifact, or returns ErrNotFound if absent.
func (a *InMemoryStore) Delete(sessionID, artifactID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.artifacts[sessionID][artifactID]; !ok {
		return ErrNotFound
	}
	delete(a.artifacts[sessionID], artifactID)
	return nil
}
