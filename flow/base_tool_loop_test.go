package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

// twoCallModel answers with a single assistant turn requesting two tools.
type twoCallModel struct{}

func (m *twoCallModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)
		respCh <- model.Response{
			Content: core.Content{Role: "assistant", Parts: []core.Part{
				core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "fc1", Name: "t1", Arguments: "{}"}},
				core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "fc2", Name: "t2", Arguments: "{}"}},
			}},
			FinishReason: "tool_calls",
		}
	}()
	return respCh, errCh
}

func (m *twoCallModel) Info() model.Info {
	return model.Info{Name: "two-call", Provider: "mock", SupportsTools: true}
}

type toolLoopAgent struct {
	*executorAgent
	llm model.Model
}

func (a *toolLoopAgent) GetLLM() model.Model { return a.llm }

// Tool responses must come back in call order even when the first tool is
// slower, and each response event carries the actions its tool recorded.
func TestBaseFlow_ToolResponsesInCallOrder(t *testing.T) {
	tools := map[string]tool.Tool{
		"t1": &scriptedTool{name: "t1", delay: 20 * time.Millisecond, result: "r1", stateDelta: map[string]any{"a": 1}},
		"t2": &scriptedTool{name: "t2", delay: 10 * time.Millisecond, result: "r2", transferTo: "next"},
	}
	agent := &toolLoopAgent{
		executorAgent: &executorAgent{name: "A", tools: tools},
		llm:           &twoCallModel{},
	}

	evCh, err := NewBaseFlow(agent).Execute(newExecutorRunContext(t))
	require.NoError(t, err)

	var toolEvents []core.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-evCh:
			if !ok {
				goto done
			}
			if len(ev.GetFunctionResponses()) > 0 {
				toolEvents = append(toolEvents, ev)
			}
		case <-timeout:
			t.Fatal("timeout waiting for events")
		}
	}
done:

	require.Len(t, toolEvents, 2)
	assert.Equal(t, "t1", toolEvents[0].GetFunctionResponses()[0].Name)
	assert.Equal(t, "t2", toolEvents[1].GetFunctionResponses()[0].Name)

	assert.Equal(t, 1, toolEvents[0].Actions.StateDelta["a"])
	require.NotNil(t, toolEvents[1].Actions.TransferToAgent)
	assert.Equal(t, "next", *toolEvents[1].Actions.TransferToAgent)
}
