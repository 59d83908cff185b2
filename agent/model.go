package agent

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/tripmesh/tripmesh/core"
	"github.com/tripmesh/tripmesh/flow"
	"github.com/tripmesh/tripmesh/model"
	"github.com/tripmesh/tripmesh/tool"
)

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

// ModelAgentOptions configures a ModelAgent. Use functional options with
// NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction           Instruction
	GlobalInstruction     Instruction
	EnableStreaming       bool
	EnableFunctionCalling bool
	ToolTimeout           time.Duration
	OutputKey             string
	MaxHistoryMessages    int
	AllowTransfer         bool
	Tools                 map[string]tool.Tool
}

// ModelAgent is the LLM-backed agent: it resolves an instruction into a
// system prompt, runs the model over the conversation history, executes any
// tool calls, and can transfer control to sub-agents. It embeds BaseAgent
// for lifecycle and hierarchy, and implements flow.FlowAgent so the flow
// pipeline can drive it.
type ModelAgent struct {
	BaseAgent
	llm                   model.Model
	instruction           Instruction
	tools                 map[string]tool.Tool
	enableFunctionCalling bool
	enableStreaming       bool
	toolTimeout           time.Duration
	outputKey             string
	maxHistoryMessages    int
	allowTransfer         bool
}

// NewModelAgent creates a model-backed agent. Defaults: streaming and
// function calling on, transfers allowed, 15s tool timeout, 20-message
// history window, and a generic helpful-assistant instruction.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:           NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableStreaming:       true,
		EnableFunctionCalling: true,
		ToolTimeout:           15 * time.Second,
		MaxHistoryMessages:    20,
		AllowTransfer:         true,
		Tools:                 make(map[string]tool.Tool),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		BaseAgent:             NewBaseAgent(name),
		llm:                   llm,
		instruction:           opts.Instruction,
		enableStreaming:       opts.EnableStreaming,
		enableFunctionCalling: opts.EnableFunctionCalling,
		toolTimeout:           opts.ToolTimeout,
		outputKey:             opts.OutputKey,
		maxHistoryMessages:    opts.MaxHistoryMessages,
		allowTransfer:         opts.AllowTransfer,
		tools:                 opts.Tools,
	}
}

// RegisterTool makes a tool callable by the model when function calling is
// enabled.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools registers several tools at once.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// UnregisterTool removes a tool by name, reporting whether it was present.
func (a *ModelAgent) UnregisterTool(name string) bool {
	_, ok := a.tools[name]
	delete(a.tools, name)
	return ok
}

// HasTool reports whether a tool with the given name is registered.
func (a *ModelAgent) HasTool(name string) bool {
	_, ok := a.tools[name]
	return ok
}

// ListTools returns the registered tool names.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for n := range a.tools {
		names = append(names, n)
	}
	return names
}

// GetTool looks up a registered tool by name.
func (a *ModelAgent) GetTool(name string) (tool.Tool, bool) {
	t, ok := a.tools[name]
	return t, ok
}

// ClearTools drops every registered tool.
func (a *ModelAgent) ClearTools() {
	a.tools = make(map[string]tool.Tool)
}

// GetName implements flow.FlowAgent.
func (a *ModelAgent) GetName() string { return a.Name() }

// GetLLM returns the underlying model.
func (a *ModelAgent) GetLLM() model.Model { return a.llm }

// GetTools returns a copy of the registered tool map.
func (a *ModelAgent) GetTools() map[string]tool.Tool {
	return maps.Clone(a.tools)
}

// GetSubAgents returns the children that participate in flows.
func (a *ModelAgent) GetSubAgents() []flow.FlowAgent {
	children := a.SubAgents()
	out := make([]flow.FlowAgent, 0, len(children))
	for _, c := range children {
		if fa, ok := c.(flow.FlowAgent); ok {
			out = append(out, fa)
		}
	}
	return out
}

// IsFunctionCallingEnabled reports whether the model may call tools.
func (a *ModelAgent) IsFunctionCallingEnabled() bool { return a.enableFunctionCalling }

// IsStreamingEnabled reports whether responses stream as partial events.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// IsTransferEnabled reports whether the agent may hand off to sub-agents.
func (a *ModelAgent) IsTransferEnabled() bool { return a.allowTransfer }

// GetOutputKey returns the session state key the final response is saved
// under, or empty when responses are not saved.
func (a *ModelAgent) GetOutputKey() string { return a.outputKey }

// MaxHistoryMessages returns the conversation history window size.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// ResolveInstructions renders the agent's instruction (static text or
// template over session state) into the final system prompt.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// ExecuteTool decodes the JSON args and invokes the named tool.
func (a *ModelAgent) ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (interface{}, error) {
	t, ok := a.tools[toolName]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	decoded := map[string]interface{}{}
	if err := json.Unmarshal([]byte(args), &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	return t.Call(toolCtx, decoded)
}

// TransferToAgent runs the named descendant with the same run context, so
// session state and the emit channel are shared across the handoff.
func (a *ModelAgent) TransferToAgent(runCtx *core.RunContext, agentName string) error {
	target := a.FindAgent(agentName)
	if target == nil {
		return fmt.Errorf("agent '%s' not found in hierarchy", agentName)
	}
	return target.Run(runCtx)
}

// Run implements core.Agent: the selector picks a flow for this agent's
// capabilities and the flow's events are forwarded to the run context.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	return a.runFlow(runCtx, a)
}

// runFlow drives the flow pipeline on behalf of fa, which is usually the
// agent itself but may be a wrapper that overrides transfer routing.
func (a *ModelAgent) runFlow(runCtx *core.RunContext, fa flow.FlowAgent) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	ctx := runCtx.Context // runner manages Start/Stop lifecycle

	fl := flow.NewSelector().SelectFlow(fa)
	runCtx.LogDebug("agent.flow.selected", "agent", a.Name(), "flow", fmt.Sprintf("%T", fl))

	eventChan, err := fl.Execute(runCtx)
	if err != nil {
		runCtx.LogError("agent.flow.execute.error", "agent", a.Name(), "error", err.Error())
		return fmt.Errorf("flow execution failed: %w", err)
	}

	// A model backend failure is emitted as an error event and also surfaced
	// as the Run error so callers can terminate the conversation instead of
	// continuing with a dead model.
	var backendErr error
	for event := range eventChan {
		if event.ErrorMessage != nil && backendErr == nil {
			backendErr = fmt.Errorf("model backend error: %s", *event.ErrorMessage)
		}
		select {
		case runCtx.Emit <- event:
			role := ""
			if event.Content != nil {
				role = event.Content.Role
			}
			runCtx.LogDebug("agent.event.forward",
				"agent", a.Name(),
				"event_id", event.ID,
				"role", role,
				"fn_calls", len(event.GetFunctionCalls()))
		case <-ctx.Done():
			runCtx.LogWarn("agent.run.context_done", "agent", a.Name(), "error", ctx.Err())
			return ctx.Err()
		}
	}

	runCtx.LogDebug("agent.flow.execute.complete", "agent", a.Name())
	return backendErr
}
