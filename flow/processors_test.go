package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

// toolsMockAgent layers tools and function calling onto the shared mock.
type toolsMockAgent struct {
	plainFlowAgent
	tools    map[string]tool.Tool
	transfer bool
	subs     []FlowAgent
}

func (a *toolsMockAgent) GetTools() map[string]tool.Tool { return a.tools }
func (a *toolsMockAgent) IsFunctionCallingEnabled() bool { return true }
func (a *toolsMockAgent) IsTransferEnabled() bool        { return a.transfer }
func (a *toolsMockAgent) GetSubAgents() []FlowAgent      { return a.subs }

func TestProcessorNames(t *testing.T) {
	assert.Equal(t, "instructions", NewInstructionsProcessor().Name())
	assert.Equal(t, "contents", NewContentsProcessor().Name())
	assert.Equal(t, "tools", NewToolsProcessor().Name())
	assert.Equal(t, "transfer_tool_injector", NewTransferToolInjector().Name())
}

func TestInstructionsProcessor_SetsInstructions(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	req := &model.Request{}
	agent := &plainFlowAgent{name: "TestAgent"}

	err := NewInstructionsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	assert.Equal(t, "You are a test assistant.", req.Instructions)
}

func TestInstructionsProcessor_RendersStateTemplate(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	runCtx.Session.SetState("destination", "Lisbon")
	req := &model.Request{}
	agent := &templateMockAgent{plainFlowAgent{name: "TestAgent"}}

	err := NewInstructionsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	assert.Equal(t, "Plan a trip to Lisbon.", req.Instructions)
}

type templateMockAgent struct{ plainFlowAgent }

func (a *templateMockAgent) ResolveInstructions(_ *core.RunContext) (string, error) {
	return "Plan a trip to {{.destination}}.", nil
}

func TestContentsProcessor_BuildsSystemAndHistory(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	runCtx.Session.AddEvent(core.NewUserMessageEvent(runCtx.RunID, "hello"))
	runCtx.Session.AddEvent(core.NewMessageEvent("TestAgent", "hi there"))
	req := &model.Request{Instructions: "You are a test assistant."}
	agent := &plainFlowAgent{name: "TestAgent"}

	err := NewContentsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "system", req.Contents[0].Role)
	assert.Equal(t, "user", req.Contents[1].Role)
	assert.Equal(t, "assistant", req.Contents[2].Role)
}

func TestContentsProcessor_TrimsHistory(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	for i := 0; i < 15; i++ {
		runCtx.Session.AddEvent(core.NewUserMessageEvent(runCtx.RunID, "msg"))
	}
	req := &model.Request{}
	agent := &plainFlowAgent{name: "TestAgent"}

	err := NewContentsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	// system prompt + MaxHistoryMessages
	assert.Len(t, req.Contents, 11)
}

func TestToolsProcessor_DeclaresRegisteredTools(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	searchTool := tool.NewFunctionTool("search_flights", "Search flights.",
		map[string]any{"type": "object"},
		func(_ *core.ToolContext, _ map[string]any) (any, error) { return nil, nil })
	agent := &toolsMockAgent{tools: map[string]tool.Tool{"search_flights": searchTool}}
	req := &model.Request{}

	err := NewToolsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "function", req.Tools[0].Type)
	assert.Equal(t, "search_flights", req.Tools[0].Function.Name)
}

func TestToolsProcessor_SkipsWhenFunctionCallingDisabled(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	req := &model.Request{}
	agent := &plainFlowAgent{name: "TestAgent"}

	err := NewToolsProcessor().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	assert.Empty(t, req.Tools)
}

func TestTransferToolInjector_AddsTransferTool(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	agent := &toolsMockAgent{
		transfer: true,
		subs:     []FlowAgent{&plainFlowAgent{name: "WeatherSpecialist"}, &plainFlowAgent{name: "SportSpecialist"}},
	}
	req := &model.Request{}

	err := NewTransferToolInjector().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "transfer_to_agent", req.Tools[0].Function.Name)

	// Idempotent across processor pipeline retries.
	err = NewTransferToolInjector().ProcessRequest(runCtx, req, agent)
	require.NoError(t, err)
	assert.Len(t, req.Tools, 1)
}

func TestTransferToolInjector_SkipsWithoutSubAgents(t *testing.T) {
	runCtx := newExecutorRunContext(t)
	agent := &toolsMockAgent{transfer: true}
	req := &model.Request{}

	err := NewTransferToolInjector().ProcessRequest(runCtx, req, agent)

	require.NoError(t, err)
	assert.Empty(t, req.Tools)
}
