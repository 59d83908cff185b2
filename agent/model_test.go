package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
)

// stubModel returns one canned assistant reply per Generate call.
type stubModel struct {
	reply string
}

func (s *stubModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	reply := s.reply
	if reply == "" {
		reply = "test"
	}
	respCh <- model.Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: reply}}},
		FinishReason: "stop",
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (s *stubModel) Info() model.Info {
	return model.Info{Name: "stub", Provider: "test", SupportsTools: true}
}

func TestNewModelAgentDefaults(t *testing.T) {
	llm := &stubModel{}
	a := NewModelAgent("Concierge", llm)

	assert.NotNil(t, a)
	assert.Equal(t, llm, a.llm)
	assert.NotNil(t, a.tools)
	assert.Empty(t, a.tools)
	assert.True(t, a.enableStreaming)
	assert.True(t, a.enableFunctionCalling)
}
