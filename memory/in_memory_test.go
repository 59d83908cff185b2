package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmesh/tripmesh/core"
)

var _ core.MemoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_PutGetIsolation(t *testing.T) {
	store := NewInMemoryStore()

	m, err := store.Get("sess-1")
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, store.Put("sess-1", map[string]any{"home_airport": "BER", "party_size": 2}))

	got, err := store.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "BER", got["home_airport"])
	assert.Equal(t, 2, got["party_size"])

	// The returned map is a copy; writes must not leak back.
	got["home_airport"] = "MUC"
	again, _ := store.Get("sess-1")
	assert.Equal(t, "BER", again["home_airport"])
}

func TestInMemoryStore_StoreSearchDelete(t *testing.T) {
	store := NewInMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Store("sess-2", fmt.Sprintf("prefers option %c", 'A'+i), map[string]any{"idx": i}))
	}

	all, err := store.Search("sess-2", "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	// Matching is plain substring.
	one, err := store.Search("sess-2", "option A", 5)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Contains(t, one[0].Content, "option A")

	limited, err := store.Search("sess-2", "", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	require.NoError(t, store.Delete("sess-2", all[0].ID))
	rest, _ := store.Search("sess-2", "", 10)
	assert.Len(t, rest, 4)

	assert.Error(t, store.Delete("sess-2", "does_not_exist"))
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Put("sess-3", map[string]any{fmt.Sprintf("k%d", i%5): i}))
			_, err := store.Get("sess-3")
			assert.NoError(t, err)
			_, err = store.Search("sess-3", "", 5)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	m, err := store.Get("sess-3")
	require.NoError(t, err)
	assert.NotEmpty(t, m)
}
