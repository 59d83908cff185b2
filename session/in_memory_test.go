package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/internal/testutil"
)

var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.ID)
	assert.Empty(t, sess.Events)

	// Subsequent Get returns the same session.
	again, err := store.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
}

func TestInMemoryStore_GetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Create("s1")
	require.NoError(t, err)

	sess, err := store.Get("s1")
	require.NoError(t, err)
	sess.AddEvent(testutil.NewEventBuilder().Author("WeatherSpecialist").AssistantText("sunny").Build())

	// Mutating the clone must not leak into the store.
	fresh, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Events)
}

func TestInMemoryStore_AppendEvent(t *testing.T) {
	store := NewInMemoryStore()

	ev := testutil.NewEventBuilder().
		Run("run-1").
		Author("SupportAgent").
		AssistantText("How can I help you plan your trip?").
		Build()
	require.NoError(t, store.AppendEvent("s1", ev))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, sess.Events, 1)
	assert.Equal(t, "SupportAgent", sess.Events[0].Author)
	assert.Equal(t, "run-1", sess.Events[0].RunID)
}

func TestInMemoryStore_ApplyDelta(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.ApplyDelta("s1", map[string]any{"destination": "Lisbon"}))
	require.NoError(t, store.ApplyDelta("s1", map[string]any{"days": 4}))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	v, ok := sess.GetState("destination")
	require.True(t, ok)
	assert.Equal(t, "Lisbon", v)
	v, ok = sess.GetState("days")
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestInMemoryStore_CreateOverwrites(t *testing.T) {
	store := NewInMemoryStore()

	seeded := testutil.NewSessionBuilder("s1").
		State("destination", "Paris").
		Events(testutil.NewEventBuilder().UserText("hello").Build()).
		Build()
	require.NoError(t, store.AppendEvent("s1", seeded.Events[0]))

	_, err := store.Create("s1")
	require.NoError(t, err)

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, sess.Events)
}
