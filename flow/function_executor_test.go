package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/tool"
)

// scriptedTool simulates latency, errors, panics and side effects.
type scriptedTool struct {
	name       string
	delay      time.Duration
	result     any
	err        error
	panicMsg   any
	stateDelta map[string]any
	transferTo string
}

func (st *scriptedTool) Name() string               { return st.name }
func (st *scriptedTool) Description() string        { return "scripted tool" }
func (st *scriptedTool) Parameters() map[string]any { return map[string]any{} }

func (st *scriptedTool) Call(tc *core.ToolContext, _ map[string]any) (any, error) {
	if st.delay > 0 {
		select {
		case <-time.After(st.delay):
		case <-tc.Context().Done():
			return nil, tc.Context().Err()
		}
	}
	if st.panicMsg != nil {
		panic(st.panicMsg)
	}
	for k, v := range st.stateDelta {
		tc.SetState(k, v)
	}
	if st.transferTo != "" {
		tc.TransferToAgent(st.transferTo)
	}
	return st.result, st.err
}

type executorAgent struct {
	name  string
	tools map[string]tool.Tool
}

func (a *executorAgent) GetName() string                                      { return a.name }
func (a *executorAgent) GetLLM() model.Model                                  { return nil }
func (a *executorAgent) ResolveInstructions(*core.RunContext) (string, error) { return "", nil }
func (a *executorAgent) GetTools() map[string]tool.Tool                       { return a.tools }
func (a *executorAgent) GetSubAgents() []FlowAgent                            { return nil }
func (a *executorAgent) IsFunctionCallingEnabled() bool                       { return true }
func (a *executorAgent) IsStreamingEnabled() bool                             { return false }
func (a *executorAgent) IsTransferEnabled() bool                              { return true }
func (a *executorAgent) GetOutputKey() string                                 { return "" }
func (a *executorAgent) MaxHistoryMessages() int                              { return 50 }
func (a *executorAgent) ExecuteTool(*core.ToolContext, string, string) (any, error) {
	return nil, nil
}
func (a *executorAgent) TransferToAgent(*core.RunContext, string) error { return nil }

func newExecutorRunContext(t *testing.T) *core.RunContext {
	t.Helper()
	store := session.NewInMemoryStore()
	sess, err := store.Create("sess")
	require.NoError(t, err)
	user := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "msg"}}}
	return core.NewRunContext(
		context.Background(), "sess", "run",
		core.AgentInfo{Name: "agent", Type: "test"}, user,
		make(chan core.Event, 100), nil, sess, store, nil, nil, logging.NoOpLogger{},
	)
}

// collect returns an emit callback appending tool names, serialized by the
// executor for the unordered path.
func collect(order *[]string) func(core.Event) error {
	return func(ev core.Event) error {
		*order = append(*order, ev.GetFunctionResponses()[0].Name)
		return nil
	}
}

func TestFunctionExecutor_Single(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"search_flights": &scriptedTool{name: "search_flights", result: 42},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 4, PreserveOrder: true})

	var events []core.Event
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "search_flights", Arguments: "{}"}},
		func(ev core.Event) error { events = append(events, ev); return nil })

	assert.Len(t, events, 1)
}

func TestFunctionExecutor_ParallelUnordered(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"slow": &scriptedTool{name: "slow", delay: 60 * time.Millisecond, result: "s"},
		"fast": &scriptedTool{name: "fast", delay: 5 * time.Millisecond, result: "f"},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 2, PreserveOrder: false})

	var order []string
	start := time.Now()
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "slow", Arguments: "{}"}, {ID: "2", Name: "fast", Arguments: "{}"}},
		collect(&order))

	require.Len(t, order, 2)
	assert.Equal(t, "fast", order[0], "faster tool should finish first")
	assert.Less(t, time.Since(start), 90*time.Millisecond, "tools should overlap")
}

func TestFunctionExecutor_PreserveOrder(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"t1": &scriptedTool{name: "t1", delay: 30 * time.Millisecond, result: 1},
		"t2": &scriptedTool{name: "t2", delay: 5 * time.Millisecond, result: 2},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 2, PreserveOrder: true})

	var order []string
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "t1", Arguments: "{}"}, {ID: "2", Name: "t2", Arguments: "{}"}},
		collect(&order))

	assert.Equal(t, []string{"t1", "t2"}, order)
}

func TestFunctionExecutor_ErrorIsolation(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"ok":  &scriptedTool{name: "ok", result: "fine"},
		"bad": &scriptedTool{name: "bad", err: errors.New("boom")},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 2, PreserveOrder: false})

	var failed int
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "ok", Arguments: "{}"}, {ID: "2", Name: "bad", Arguments: "{}"}},
		func(ev core.Event) error {
			if ev.GetFunctionResponses()[0].Error != "" {
				failed++
			}
			return nil
		})

	assert.Equal(t, 1, failed)
}

func TestFunctionExecutor_PanicRecovery(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"panic": &scriptedTool{name: "panic", panicMsg: "boom"},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{})

	var errText string
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "panic", Arguments: "{}"}},
		func(ev core.Event) error {
			errText = ev.GetFunctionResponses()[0].Error
			return nil
		})

	assert.NotEmpty(t, errText, "panic should surface as tool error")
}

func TestFunctionExecutor_ActionsApplied(t *testing.T) {
	a := &executorAgent{name: "A", tools: map[string]tool.Tool{
		"act": &scriptedTool{name: "act", stateDelta: map[string]any{"k": "v"}, transferTo: "next"},
	}}
	exec := NewParallelFunctionExecutor(FunctionExecutorConfig{})

	var events []core.Event
	exec.Execute(newExecutorRunContext(t), a, a.tools,
		[]core.FunctionCall{{ID: "1", Name: "act", Arguments: "{}"}},
		func(ev core.Event) error { events = append(events, ev); return nil })

	require.Len(t, events, 1)
	assert.Equal(t, "v", events[0].Actions.StateDelta["k"])
	require.NotNil(t, events[0].Actions.TransferToAgent)
	assert.Equal(t, "next", *events[0].Actions.TransferToAgent)
}
