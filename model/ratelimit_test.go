package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/core"
)

func generateOnce(t *testing.T, m Model) Response {
	t.Helper()

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{{Role: "user", Parts: []core.Part{core.TextPart{Text: "hi"}}}},
	})

	var last Response
	for resp := range respCh {
		last = resp
	}
	require.NoError(t, <-errCh)
	return last
}

func TestRateLimitedModel_Delegates(t *testing.T) {
	inner := NewMockModel("test-model", "test")
	limited := NewRateLimitedModel(inner, 600)

	resp := generateOnce(t, limited)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "test-model", limited.Info().Name)
}

func TestRateLimitedModel_Throttles(t *testing.T) {
	inner := NewMockModel("test-model", "test")
	// 60 requests/minute = one slot per second after the initial burst.
	limited := NewRateLimitedModel(inner, 60)

	start := time.Now()
	generateOnce(t, limited)
	generateOnce(t, limited)

	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestRateLimitedModel_ContextCancelled(t *testing.T) {
	inner := NewMockModel("test-model", "test")
	limited := NewRateLimitedModel(inner, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// First call consumes the burst slot; the cancelled call must fail
	// instead of waiting a minute.
	generateOnce(t, limited)

	_, errCh := limited.Generate(ctx, Request{})
	err := <-errCh
	assert.Error(t, err)
}
