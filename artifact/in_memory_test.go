package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmesh/tripmesh/core"
)

var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	store := NewInMemoryStore()
	data := []byte("day 1: Alfama walking tour")
	require.NoError(t, store.Save("sess-1", "itinerary", data))

	// Mutating the caller's slice must not reach the store.
	data[0] = 'D'
	out, err := store.Get("sess-1", "itinerary")
	require.NoError(t, err)
	assert.Equal(t, "day 1: Alfama walking tour", string(out))

	// Nor can the returned slice write back.
	out[0] = 'x'
	out2, _ := store.Get("sess-1", "itinerary")
	assert.Equal(t, "day 1: Alfama walking tour", string(out2))
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("sess-1", "itinerary", []byte("1")))
	require.NoError(t, store.Save("sess-1", "packing-list", []byte("2")))

	ids, err := store.List("sess-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	require.NoError(t, store.Delete("sess-1", "itinerary"))
	_, err = store.Get("sess-1", "itinerary")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, _ = store.List("sess-1")
	assert.Equal(t, []string{"packing-list"}, ids)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save("sess-1", fmt.Sprintf("a%d", i%10), []byte("data")))
			_, _ = store.List("sess-1")
		}(i)
	}
	wg.Wait()

	ids, err := store.List("sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}
